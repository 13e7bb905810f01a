package service

import (
	"context"
	"errors"
	"net/url"

	"go.uber.org/zap"

	"vocab_quiz_backend/internal/content"
	"vocab_quiz_backend/internal/util"
	"vocab_quiz_backend/internal/view"
	"vocab_quiz_backend/pkg/logger"
	"vocab_quiz_backend/pkg/monitoring"
)

// ContentDocument 内容层级文档来源
type ContentDocument interface {
	Document(ctx context.Context) (*content.Document, error)
	Invalidate()
}

// PageResult 路由后的页面：内容页或测验页二选一
type PageResult struct {
	View content.View   `json:"view"`
	Page *content.Page  `json:"page,omitempty"`
	Quiz *view.QuizPage `json:"quiz,omitempty"`
}

type ContentService struct {
	content ContentDocument
	quiz    *QuizService
}

func NewContentService(doc ContentDocument, quiz *QuizService) *ContentService {
	return &ContentService{content: doc, quiz: quiz}
}

// Page 根据查询参数渲染页面。测验视图未给出题集时取小节关联的题集，
// 再退回第一个题集。
func (s *ContentService) Page(ctx context.Context, q url.Values) (PageResult, error) {
	v := content.Resolve(q)
	if v.Kind == content.ViewQuiz {
		setKey := v.SetKey
		if setKey == "" {
			setKey = s.sectionQuizSet(ctx, v)
		}
		page, err := s.quiz.Open(ctx, setKey)
		return PageResult{View: v, Quiz: &page}, err
	}

	doc, err := s.content.Document(ctx)
	if err != nil {
		monitoring.ObserveFetchError(util.DocumentContent)
		logger.Log.Error("Failed to load content", zap.Error(err))
		return PageResult{View: v}, err
	}
	page, err := content.Lookup(doc, v)
	if err != nil {
		var nf *content.NotFoundError
		if errors.As(err, &nf) {
			logger.Log.Debug("Content node not found", zap.String("node", nf.Node), zap.String("key", nf.Key))
		}
		return PageResult{View: v}, err
	}
	return PageResult{View: v, Page: page}, nil
}

// sectionQuizSet 内容不可用或路径无效时返回空串，由测验服务退回第一个题集
func (s *ContentService) sectionQuizSet(ctx context.Context, v content.View) string {
	if v.Section == "" {
		return ""
	}
	doc, err := s.content.Document(ctx)
	if err != nil {
		logger.Log.Warn("Content unavailable while resolving quiz set", zap.Error(err))
		return ""
	}
	key, err := content.QuizSetFor(doc, v)
	if err != nil {
		logger.Log.Warn("Quiz section not found", zap.Error(err))
		return ""
	}
	return key
}

// Reload 丢弃内容与题库缓存
func (s *ContentService) Reload(ctx context.Context) {
	s.content.Invalidate()
	s.quiz.Reload(ctx)
}
