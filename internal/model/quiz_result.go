package model

import (
	"time"
)

// QuizResult 一次已提交测验的成绩记录
// swagger:model
type QuizResult struct {
	UUIDBase
	SessionID   string    `gorm:"type:varchar(36);uniqueIndex" json:"sessionId"`
	SetKey      string    `gorm:"type:varchar(128);index" json:"set"`
	Score       int       `gorm:"not null" json:"score"`
	Total       int       `gorm:"not null" json:"total"`
	Answered    int       `gorm:"not null" json:"answered"`
	Percent     float64   `json:"percent"`
	Tier        string    `gorm:"type:varchar(32)" json:"tier"`
	Answers     string    `gorm:"type:json" json:"-"` // 题目 id -> 作答 的 JSON
	StartedAt   time.Time `json:"startedAt"`
	SubmittedAt time.Time `gorm:"index" json:"submittedAt"`
}

func (QuizResult) TableName() string {
	return "quiz_results"
}
