package controller

import (
	"errors"

	"github.com/gin-gonic/gin"

	"vocab_quiz_backend/internal/quiz"
	"vocab_quiz_backend/internal/service"
	"vocab_quiz_backend/internal/util"
	"vocab_quiz_backend/internal/view"
)

type QuizController struct {
	QuizService *service.QuizService
	Hub         *service.QuizHub
}

func NewQuizController(quizService *service.QuizService, hub *service.QuizHub) *QuizController {
	return &QuizController{QuizService: quizService, Hub: hub}
}

// AnswerRequest 作答请求，题号可以为 0
type AnswerRequest struct {
	QuestionID *int   `json:"questionId" binding:"required"`
	Value      string `json:"value" binding:"required"`
}

// JumpRequest 跳题请求，index 从 0 开始
type JumpRequest struct {
	Index *int `json:"index" binding:"required"`
}

// respondQuiz 按错误类型选择状态码，出错时仍带上当前页面
func respondQuiz(ctx *gin.Context, page view.QuizPage, err error) {
	switch {
	case err == nil:
		util.Success(ctx, page)
	case errors.Is(err, util.ErrSetUnavailable), errors.Is(err, util.ErrNoQuestionSets):
		util.BadGateway(ctx, util.ErrSetUnavailable.Error(), page)
	case errors.Is(err, quiz.ErrControlDisabled):
		util.Conflict(ctx, err.Error(), page)
	case errors.Is(err, quiz.ErrUnknownAction):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

func (c *QuizController) dispatch(ctx *gin.Context, action quiz.Action) {
	page, err := c.QuizService.Dispatch(ctx.Request.Context(), ctx.Param("set"), action)
	respondQuiz(ctx, page, err)
}

// @Summary 打开题集
// @Description 打开或恢复题集的答题会话；题集不存在时退回第一个题集
// @Tags 测验
// @Produce json
// @Param set path string true "题集名称"
// @Success 200 {object} util.Response{data=view.QuizPage}
// @Failure 502 {object} util.Response{data=view.QuizPage} "题库加载失败"
// @Router /quiz/{set} [get]
func (c *QuizController) Open(ctx *gin.Context) {
	page, err := c.QuizService.Open(ctx.Request.Context(), ctx.Param("set"))
	respondQuiz(ctx, page, err)
}

// @Summary 作答
// @Description 为当前题作答；已作答、非当前题或值不在选项中时忽略
// @Tags 测验
// @Accept json
// @Produce json
// @Param set path string true "题集名称"
// @Param answer body AnswerRequest true "作答"
// @Success 200 {object} util.Response{data=view.QuizPage}
// @Failure 400 {object} util.Response
// @Router /quiz/{set}/answer [post]
func (c *QuizController) Answer(ctx *gin.Context) {
	var req AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	c.dispatch(ctx, quiz.Action{Kind: quiz.ActionSelect, QuestionID: *req.QuestionID, Value: req.Value})
}

// @Summary 下一题
// @Tags 测验
// @Produce json
// @Param set path string true "题集名称"
// @Success 200 {object} util.Response{data=view.QuizPage}
// @Failure 409 {object} util.Response{data=view.QuizPage} "当前题未作答或已是最后一题"
// @Router /quiz/{set}/next [post]
func (c *QuizController) Next(ctx *gin.Context) {
	c.dispatch(ctx, quiz.Action{Kind: quiz.ActionNext})
}

// @Summary 上一题
// @Tags 测验
// @Produce json
// @Param set path string true "题集名称"
// @Success 200 {object} util.Response{data=view.QuizPage}
// @Failure 409 {object} util.Response{data=view.QuizPage}
// @Router /quiz/{set}/previous [post]
func (c *QuizController) Previous(ctx *gin.Context) {
	c.dispatch(ctx, quiz.Action{Kind: quiz.ActionPrevious})
}

// @Summary 跳转到指定题
// @Tags 测验
// @Accept json
// @Produce json
// @Param set path string true "题集名称"
// @Param jump body JumpRequest true "题号（从 0 开始）"
// @Success 200 {object} util.Response{data=view.QuizPage}
// @Router /quiz/{set}/jump [post]
func (c *QuizController) Jump(ctx *gin.Context) {
	var req JumpRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	c.dispatch(ctx, quiz.Action{Kind: quiz.ActionJump, Index: *req.Index})
}

// @Summary 交卷
// @Description 计分并返回成绩；重复提交返回已冻结的成绩
// @Tags 测验
// @Produce json
// @Param set path string true "题集名称"
// @Success 200 {object} util.Response{data=view.QuizPage}
// @Failure 409 {object} util.Response{data=view.QuizPage} "未到最后一题或尚未作答"
// @Router /quiz/{set}/submit [post]
func (c *QuizController) Submit(ctx *gin.Context) {
	c.dispatch(ctx, quiz.Action{Kind: quiz.ActionSubmit})
}

// @Summary 重新开始
// @Tags 测验
// @Produce json
// @Param set path string true "题集名称"
// @Success 200 {object} util.Response{data=view.QuizPage}
// @Router /quiz/{set}/reset [post]
func (c *QuizController) Reset(ctx *gin.Context) {
	c.dispatch(ctx, quiz.Action{Kind: quiz.ActionReset})
}

// @Summary 清除全部作答
// @Tags 测验
// @Produce json
// @Param set path string true "题集名称"
// @Success 200 {object} util.Response{data=view.QuizPage}
// @Router /quiz/{set}/clear [post]
func (c *QuizController) Clear(ctx *gin.Context) {
	c.dispatch(ctx, quiz.Action{Kind: quiz.ActionClear})
}

// @Summary 成绩历史
// @Tags 测验
// @Produce json
// @Param set path string true "题集名称"
// @Param limit query int false "条数（默认 20，最多 100）"
// @Success 200 {object} util.Response{data=util.ListResponse{list=[]model.QuizResult}}
// @Failure 503 {object} util.Response "未配置数据库"
// @Router /quiz/{set}/results/history [get]
func (c *QuizController) History(ctx *gin.Context) {
	limit := util.ParseIntDefault(ctx.Query("limit"), 20)
	results, err := c.QuizService.History(ctx.Request.Context(), ctx.Param("set"), limit)
	if err != nil {
		if errors.Is(err, util.ErrHistoryUnavailable) {
			util.ServiceUnavailable(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.ListResponse{List: results, Total: len(results)})
}

// @Summary 订阅题集页面
// @Description 升级为 WebSocket；连接后先推送当前页面，之后每次变化（含自动跳题）推送 PAGE 消息，客户端可发送 ACTION 消息操作会话
// @Tags 测验
// @Param set path string true "题集名称"
// @Success 101 {string} string "Switching Protocols"
// @Failure 503 {object} util.Response
// @Router /quiz/{set}/live [get]
func (c *QuizController) Live(ctx *gin.Context) {
	if c.Hub == nil {
		util.ServiceUnavailable(ctx, "live updates disabled")
		return
	}
	service.ServeWs(c.Hub, ctx.Writer, ctx.Request, ctx.Param("set"))
}
