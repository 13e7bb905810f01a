package controller

import (
	"errors"

	"github.com/gin-gonic/gin"

	"vocab_quiz_backend/internal/content"
	"vocab_quiz_backend/internal/service"
	"vocab_quiz_backend/internal/util"
)

type ContentController struct {
	ContentService *service.ContentService
	QuizService    *service.QuizService
}

func NewContentController(contentService *service.ContentService, quizService *service.QuizService) *ContentController {
	return &ContentController{ContentService: contentService, QuizService: quizService}
}

// Page godoc
// @Summary 按查询参数渲染页面
// @Description level/week/tag/section 逐级定位学习内容；view=quiz 或带 set 参数时返回测验页
// @Tags content
// @Produce json
// @Param level query string false "级别"
// @Param week query string false "周"
// @Param tag query string false "主题"
// @Param section query string false "小节序号（从 0 开始）"
// @Param view query string false "quiz"
// @Param set query string false "题集名称"
// @Success 200 {object} util.Response{data=service.PageResult}
// @Failure 404 {object} util.Response "节点不存在"
// @Failure 502 {object} util.Response "文档加载失败"
// @Router /page [get]
func (c *ContentController) Page(ctx *gin.Context) {
	res, err := c.ContentService.Page(ctx.Request.Context(), ctx.Request.URL.Query())
	if err == nil {
		util.Success(ctx, res)
		return
	}

	var nf *content.NotFoundError
	switch {
	case errors.As(err, &nf):
		util.NotFound(ctx, nf.Error())
	case errors.Is(err, util.ErrContentUnavailable):
		util.BadGateway(ctx, util.ErrContentUnavailable.Error(), res)
	case res.Quiz != nil:
		respondQuiz(ctx, *res.Quiz, err)
	default:
		util.LogInternalError(ctx, err)
	}
}

// Sets godoc
// @Summary 题集列表
// @Description 按文档顺序返回全部题集名称
// @Tags content
// @Produce json
// @Success 200 {object} util.Response{data=util.ListResponse{list=[]string}}
// @Failure 502 {object} util.Response
// @Router /sets [get]
func (c *ContentController) Sets(ctx *gin.Context) {
	keys, err := c.QuizService.SetKeys(ctx.Request.Context())
	if err != nil {
		util.BadGateway(ctx, util.ErrSetUnavailable.Error(), nil)
		return
	}
	util.Success(ctx, util.ListResponse{List: keys, Total: len(keys)})
}

// Reload godoc
// @Summary 重新加载数据文档
// @Description 丢弃已缓存的题库与内容文档，下次请求时重新读取
// @Tags admin
// @Produce json
// @Success 200 {object} util.Response
// @Router /admin/reload [post]
func (c *ContentController) Reload(ctx *gin.Context) {
	c.ContentService.Reload(ctx.Request.Context())
	util.Success(ctx, gin.H{"reloaded": true})
}
