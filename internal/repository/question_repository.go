package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"vocab_quiz_backend/internal/quiz"
	"vocab_quiz_backend/internal/util"
)

// QuestionRepository 题库文档：题集 key -> 有序题目列表，保留文档中的题集顺序
type QuestionRepository struct {
	cache documentCache[*util.OrderedMap[[]quiz.Question]]
}

func NewQuestionRepository(source DocumentSource, name string) *QuestionRepository {
	return &QuestionRepository{cache: documentCache[*util.OrderedMap[[]quiz.Question]]{
		source: source,
		name:   name,
		parse:  ParseQuestionDocument,
	}}
}

// ParseQuestionDocument 解析题库文档，不做题目合法性校验
func ParseQuestionDocument(data []byte) (*util.OrderedMap[[]quiz.Question], error) {
	var sets util.OrderedMap[[]quiz.Question]
	if err := json.Unmarshal(data, &sets); err != nil {
		return nil, fmt.Errorf("parse question document: %w", err)
	}
	return &sets, nil
}

func (r *QuestionRepository) load(ctx context.Context) (*util.OrderedMap[[]quiz.Question], error) {
	sets, err := r.cache.get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrSetUnavailable, err)
	}
	return sets, nil
}

// SetKeys 按文档顺序返回全部题集 key
func (r *QuestionRepository) SetKeys(ctx context.Context) ([]string, error) {
	sets, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return sets.Keys(), nil
}

func (r *QuestionRepository) Get(ctx context.Context, key string) (quiz.QuestionSet, error) {
	sets, err := r.load(ctx)
	if err != nil {
		return quiz.QuestionSet{}, err
	}
	questions, ok := sets.Get(key)
	if !ok {
		return quiz.QuestionSet{}, fmt.Errorf("%w: %q", util.ErrSetNotFound, key)
	}
	return quiz.QuestionSet{Key: key, Questions: questions}, nil
}

// First 文档中的第一个题集
func (r *QuestionRepository) First(ctx context.Context) (quiz.QuestionSet, error) {
	sets, err := r.load(ctx)
	if err != nil {
		return quiz.QuestionSet{}, err
	}
	keys := sets.Keys()
	if len(keys) == 0 {
		return quiz.QuestionSet{}, util.ErrNoQuestionSets
	}
	questions, _ := sets.Get(keys[0])
	return quiz.QuestionSet{Key: keys[0], Questions: questions}, nil
}

// Invalidate 丢弃缓存，下次访问重新拉取
func (r *QuestionRepository) Invalidate() {
	r.cache.invalidate()
}
