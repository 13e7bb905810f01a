package repository

import (
	"context"
	"fmt"

	"vocab_quiz_backend/internal/content"
	"vocab_quiz_backend/internal/util"
)

type ContentRepository struct {
	cache documentCache[*content.Document]
}

func NewContentRepository(source DocumentSource, name string) *ContentRepository {
	return &ContentRepository{cache: documentCache[*content.Document]{
		source: source,
		name:   name,
		parse:  content.Parse,
	}}
}

func (r *ContentRepository) Document(ctx context.Context) (*content.Document, error) {
	doc, err := r.cache.get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrContentUnavailable, err)
	}
	return doc, nil
}

func (r *ContentRepository) Invalidate() {
	r.cache.invalidate()
}
