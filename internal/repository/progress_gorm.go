package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vocab_quiz_backend/internal/model"
	"vocab_quiz_backend/internal/quiz"
)

// GormProgressStore quiz_progress 表，每个题集一行
type GormProgressStore struct {
	DB *gorm.DB
}

func NewGormProgressStore(db *gorm.DB) *GormProgressStore {
	return &GormProgressStore{DB: db}
}

func (s *GormProgressStore) Save(ctx context.Context, setKey string, snap quiz.Snapshot) error {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	row := model.QuizProgress{SetKey: setKey, Payload: string(data), SavedAt: snap.SavedAt}
	return s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "set_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "saved_at", "updated_at"}),
		}).
		Create(&row).Error
}

func (s *GormProgressStore) Load(ctx context.Context, setKey string) (*quiz.Snapshot, error) {
	var row model.QuizProgress
	err := s.DB.WithContext(ctx).Where("set_key = ?", setKey).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeSnapshot([]byte(row.Payload))
}

func (s *GormProgressStore) Clear(ctx context.Context, setKey string) error {
	return s.DB.WithContext(ctx).Where("set_key = ?", setKey).Delete(&model.QuizProgress{}).Error
}
