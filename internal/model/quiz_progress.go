package model

import "time"

// QuizProgress 按题集保存的进行中会话快照，每个题集一行
type QuizProgress struct {
	SetKey    string    `gorm:"primaryKey;type:varchar(128)"`
	Payload   string    `gorm:"type:text;not null"`
	SavedAt   time.Time `gorm:"not null"`
	UpdatedAt time.Time
}

func (QuizProgress) TableName() string {
	return "quiz_progress"
}
