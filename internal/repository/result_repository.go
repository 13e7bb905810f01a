package repository

import (
	"context"

	"gorm.io/gorm"

	"vocab_quiz_backend/internal/model"
)

type ResultRepository struct {
	DB *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{DB: db}
}

func (r *ResultRepository) Create(ctx context.Context, result *model.QuizResult) error {
	return r.DB.WithContext(ctx).Create(result).Error
}

// ListBySet 最近提交的成绩在前
func (r *ResultRepository) ListBySet(ctx context.Context, setKey string, limit int) ([]model.QuizResult, error) {
	var results []model.QuizResult
	err := r.DB.WithContext(ctx).
		Where("set_key = ?", setKey).
		Order("submitted_at DESC").
		Limit(limit).
		Find(&results).Error
	return results, err
}
