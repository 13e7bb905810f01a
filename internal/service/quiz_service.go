package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"vocab_quiz_backend/internal/config"
	"vocab_quiz_backend/internal/model"
	"vocab_quiz_backend/internal/quiz"
	"vocab_quiz_backend/internal/repository"
	"vocab_quiz_backend/internal/util"
	"vocab_quiz_backend/internal/view"
	"vocab_quiz_backend/pkg/logger"
	"vocab_quiz_backend/pkg/monitoring"
	"vocab_quiz_backend/pkg/scheduler"
)

// QuestionSource 题集来源
type QuestionSource interface {
	SetKeys(ctx context.Context) ([]string, error)
	Get(ctx context.Context, key string) (quiz.QuestionSet, error)
	First(ctx context.Context) (quiz.QuestionSet, error)
	Invalidate()
}

// ResultRecorder 成绩历史，未配置数据库时为 nil
type ResultRecorder interface {
	Create(ctx context.Context, result *model.QuizResult) error
	ListBySet(ctx context.Context, setKey string, limit int) ([]model.QuizResult, error)
}

// QuizPolicy 可热更新的测验行为配置
type QuizPolicy struct {
	AutoAdvanceDelay time.Duration
	ClearDelay       time.Duration
	AdvancePolicy    quiz.AdvancePolicy
	ShuffleQuestions bool
	ShuffleOptions   bool
	View             view.Config
}

func PolicyFromConfig(cfg *config.QuizConfig) QuizPolicy {
	return QuizPolicy{
		AutoAdvanceDelay: cfg.AutoAdvanceDelay,
		ClearDelay:       cfg.ClearDelay,
		AdvancePolicy:    cfg.AdvancePolicy,
		ShuffleQuestions: cfg.ShuffleQuestions,
		ShuffleOptions:   cfg.ShuffleOptions,
		View: view.Config{
			Mode:              cfg.RenderMode,
			Sidebar:           cfg.Sidebar,
			ImmediateFeedback: cfg.ImmediateFeedback,
			Tiers:             cfg.Tiers,
		},
	}
}

// QuizService 每个题集至多一个进行中的会话。所有会话操作在同一把锁下串行执行。
type QuizService struct {
	questions QuestionSource
	progress  repository.ProgressStore
	results   ResultRecorder
	sched     scheduler.Scheduler

	// 测试注入
	Rand quiz.RandSource
	Now  func() time.Time

	mu       sync.Mutex
	policy   QuizPolicy
	sessions map[string]*quiz.Session
	listener PageListener
}

func NewQuizService(questions QuestionSource, progress repository.ProgressStore, results ResultRecorder, sched scheduler.Scheduler, policy QuizPolicy) *QuizService {
	if progress == nil {
		progress = repository.NewMemoryProgressStore()
	}
	if sched == nil {
		sched = scheduler.New()
	}
	return &QuizService{
		questions: questions,
		progress:  progress,
		results:   results,
		sched:     sched,
		policy:    policy,
		sessions:  make(map[string]*quiz.Session),
	}
}

// SetListener 注册页面变化监听者，nil 表示取消
func (s *QuizService) SetListener(l PageListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = l
}

func (s *QuizService) Policy() QuizPolicy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy
}

// UpdatePolicy 配置热更新；已打开的会话沿用原题序，只影响之后的渲染与定时
func (s *QuizService) UpdatePolicy(p QuizPolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policy = p
	if p.View.Mode == quiz.RenderAll {
		for _, sess := range s.sessions {
			sess.PresentAll()
		}
	}
	logger.Log.Info("Quiz policy updated",
		zap.String("mode", string(p.View.Mode)),
		zap.String("advance", string(p.AdvancePolicy)),
		zap.Duration("autoAdvanceDelay", p.AutoAdvanceDelay))
}

func (s *QuizService) SetKeys(ctx context.Context) ([]string, error) {
	keys, err := s.questions.SetKeys(ctx)
	if err != nil {
		monitoring.ObserveFetchError(util.DocumentQuestions)
		logger.Log.Error("Failed to load question sets", zap.Error(err))
	}
	return keys, err
}

func (s *QuizService) options() quiz.Options {
	return quiz.Options{
		Rand:              s.Rand,
		Now:               s.Now,
		KeepQuestionOrder: !s.policy.ShuffleQuestions,
		KeepOptionOrder:   !s.policy.ShuffleOptions,
	}
}

// resolveSet 找不到题集时退回文档中的第一个题集
func (s *QuizService) resolveSet(ctx context.Context, requested string) (quiz.QuestionSet, error) {
	var (
		set quiz.QuestionSet
		err error
	)
	if requested == "" {
		set, err = s.questions.First(ctx)
	} else {
		set, err = s.questions.Get(ctx, requested)
		if errors.Is(err, util.ErrSetNotFound) {
			logger.Log.Warn("Question set not found, falling back to first set", zap.String("set", requested))
			set, err = s.questions.First(ctx)
		}
	}
	if err != nil && errors.Is(err, util.ErrSetUnavailable) {
		monitoring.ObserveFetchError(util.DocumentQuestions)
		logger.Log.Error("Failed to load question set", zap.String("set", requested), zap.Error(err))
	}
	return set, err
}

// session 返回题集的进行中会话，必要时从持久化快照恢复或新建。调用方持有锁。
func (s *QuizService) session(ctx context.Context, requested string) (*quiz.Session, error) {
	set, err := s.resolveSet(ctx, requested)
	if err != nil {
		return nil, err
	}
	if sess, ok := s.sessions[set.Key]; ok {
		return sess, nil
	}

	sess := s.restore(ctx, set)
	if sess == nil {
		sess, err = quiz.NewSession(set, s.options())
		if err != nil {
			return nil, err
		}
		logger.Log.Info("Quiz session started", zap.String("set", set.Key), zap.String("session", sess.ID()))
	}
	if s.policy.View.Mode == quiz.RenderAll {
		sess.PresentAll()
	}
	s.sessions[set.Key] = sess
	return sess, nil
}

// restore 读取失败或快照无效时按无进度处理
func (s *QuizService) restore(ctx context.Context, set quiz.QuestionSet) *quiz.Session {
	snap, err := s.progress.Load(ctx, set.Key)
	if err != nil {
		logger.Log.Warn("Failed to load saved progress", zap.String("set", set.Key), zap.Error(err))
		return nil
	}
	if snap == nil {
		return nil
	}
	sess, err := quiz.Restore(set, *snap, s.options())
	if err != nil {
		logger.Log.Warn("Discarding saved progress", zap.String("set", set.Key), zap.Error(err))
		s.clear(ctx, set.Key)
		return nil
	}
	logger.Log.Info("Quiz session restored",
		zap.String("set", set.Key),
		zap.Int("answered", sess.AnsweredCount()),
		zap.Int("index", sess.CurrentIndex()))
	return sess
}

func (s *QuizService) save(ctx context.Context, sess *quiz.Session) {
	if sess.Submitted() {
		return
	}
	if err := s.progress.Save(ctx, sess.SetKey(), sess.Snapshot()); err != nil {
		logger.Log.Warn("Failed to save progress", zap.String("set", sess.SetKey()), zap.Error(err))
	}
}

func (s *QuizService) clear(ctx context.Context, setKey string) {
	if err := s.progress.Clear(ctx, setKey); err != nil {
		logger.Log.Warn("Failed to clear progress", zap.String("set", setKey), zap.Error(err))
	}
}

func (s *QuizService) render(sess *quiz.Session) view.QuizPage {
	return view.Render(sess, s.policy.View)
}

// publish 调用方持有锁
func (s *QuizService) publish(page view.QuizPage) {
	if s.listener != nil {
		s.listener.Publish(page.Set, page)
	}
}

// Open 打开（或恢复）题集并渲染当前页面
func (s *QuizService) Open(ctx context.Context, setKey string) (view.QuizPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(ctx, setKey)
	if err != nil {
		return view.Unavailable(setKey), err
	}
	return s.render(sess), nil
}

// Dispatch 执行一次用户操作并返回操作后的页面。
// 被禁用的控件返回 quiz.ErrControlDisabled，页面保持不变。
func (s *QuizService) Dispatch(ctx context.Context, setKey string, action quiz.Action) (view.QuizPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(ctx, setKey)
	if err != nil {
		return view.Unavailable(setKey), err
	}

	nav := quiz.Navigator{Session: sess, Mode: s.policy.View.Mode}
	fromIndex := sess.CurrentIndex()
	out, err := nav.Dispatch(action)
	if err != nil {
		return s.render(sess), err
	}

	switch {
	case out.Answered:
		s.onAnswered(sess, action, fromIndex)
		s.save(ctx, sess)
	case out.Submitted:
		s.onSubmitted(ctx, sess, *out.Result)
	case out.Reset:
		s.sched.Cancel(out.PreviousID)
		s.clear(ctx, sess.SetKey())
		if s.policy.View.Mode == quiz.RenderAll {
			sess.PresentAll()
		}
		logger.Log.Info("Quiz session reset",
			zap.String("set", sess.SetKey()),
			zap.String("previous", out.PreviousID),
			zap.String("session", sess.ID()))
	case out.Moved, out.Cleared:
		s.save(ctx, sess)
	}
	page := s.render(sess)
	if out.Changed() {
		s.publish(page)
	}
	return page, nil
}

func (s *QuizService) onAnswered(sess *quiz.Session, action quiz.Action, fromIndex int) {
	value, _ := sess.Answer(action.QuestionID)
	for _, q := range sess.Questions() {
		if q.ID == action.QuestionID {
			monitoring.ObserveAnswer(sess.SetKey(), value == q.CorrectAnswer)
			break
		}
	}

	answered := sess.AnsweredCount()
	if answered%view.MilestoneEvery == 0 {
		logger.Log.Info("Quiz progress milestone", zap.String("set", sess.SetKey()), zap.Int("answered", answered))
	}

	policy := s.policy
	if policy.View.Mode == quiz.RenderAll || policy.AdvancePolicy == quiz.AdvanceOff {
		return
	}
	setKey, sessionID := sess.SetKey(), sess.ID()
	s.sched.After(sessionID, policy.AutoAdvanceDelay, func() {
		s.autoAdvance(setKey, sessionID, fromIndex)
	})
}

// autoAdvance 定时器回调；会话已被替换时丢弃
func (s *QuizService) autoAdvance(setKey, sessionID string, fromIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[setKey]
	if !ok || sess.ID() != sessionID {
		return
	}
	nav := quiz.Navigator{Session: sess, Mode: s.policy.View.Mode}
	if nav.AutoAdvance(fromIndex, s.policy.AdvancePolicy) {
		s.save(context.Background(), sess)
		s.publish(s.render(sess))
	}
}

func (s *QuizService) onSubmitted(ctx context.Context, sess *quiz.Session, res quiz.Result) {
	tier := s.tiers().Evaluate(res.Percent)
	monitoring.ObserveSubmission(sess.SetKey(), string(tier.Name), res.Percent)
	logger.Log.Info("Quiz submitted",
		zap.String("set", sess.SetKey()),
		zap.String("session", sess.ID()),
		zap.Int("score", res.Score),
		zap.Int("total", res.Total),
		zap.String("tier", string(tier.Name)))

	// 先记下已提交状态，结果页展示一段时间后再清除进度
	setKey := sess.SetKey()
	if err := s.progress.Save(ctx, setKey, sess.Snapshot()); err != nil {
		logger.Log.Warn("Failed to save progress", zap.String("set", setKey), zap.Error(err))
	}
	sessionID := sess.ID()
	s.sched.After(sessionID, s.policy.ClearDelay, func() {
		s.expire(setKey, sessionID)
	})

	if s.results == nil {
		return
	}
	answers, err := json.Marshal(sess.Answers())
	if err != nil {
		logger.Log.Error("Failed to encode answers", zap.Error(err))
		return
	}
	record := &model.QuizResult{
		SessionID:   sess.ID(),
		SetKey:      setKey,
		Score:       res.Score,
		Total:       res.Total,
		Answered:    res.Answered,
		Percent:     res.Percent,
		Tier:        string(tier.Name),
		Answers:     string(answers),
		StartedAt:   sess.StartedAt(),
		SubmittedAt: res.SubmittedAt,
	}
	if err := s.results.Create(ctx, record); err != nil {
		logger.Log.Error("Failed to record quiz result", zap.String("set", setKey), zap.Error(err))
	}
}

// expire 结果页展示结束后销毁已提交的会话，下次打开时新建。会话已被替换时丢弃。
func (s *QuizService) expire(setKey, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[setKey]
	if !ok || sess.ID() != sessionID || !sess.Submitted() {
		return
	}
	delete(s.sessions, setKey)
	s.clear(context.Background(), setKey)
	logger.Log.Info("Quiz session expired", zap.String("set", setKey), zap.String("session", sessionID))
}

func (s *QuizService) tiers() quiz.TierPolicy {
	if len(s.policy.View.Tiers) == 0 {
		return quiz.DefaultTierPolicy()
	}
	return s.policy.View.Tiers
}

// History 题集最近的成绩记录
func (s *QuizService) History(ctx context.Context, setKey string, limit int) ([]model.QuizResult, error) {
	if s.results == nil {
		return nil, util.ErrHistoryUnavailable
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.results.ListBySet(ctx, setKey, limit)
}

// Reload 丢弃题库缓存和内存中的会话；进行中的进度先落盘，下次打开时按新题库校验恢复
func (s *QuizService) Reload(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, sess := range s.sessions {
		s.sched.Cancel(sess.ID())
		if sess.Submitted() {
			s.clear(ctx, key)
		} else {
			s.save(ctx, sess)
		}
		delete(s.sessions, key)
	}
	s.questions.Invalidate()
	logger.Log.Info("Question data reloaded")
}

func (s *QuizService) Close() {
	s.sched.Stop()
}
