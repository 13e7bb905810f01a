package quiz

import (
	"fmt"
	"strings"
)

// ClozeMarker 填空题题干中的空位标记
const ClozeMarker = "_____"

// Question 单道选择题，加载后不可变
type Question struct {
	ID            int      `json:"id"`
	PromptText    string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct"`
	Category      string   `json:"category"`
}

// HasOption 判断 value 是否为该题的选项之一
func (q Question) HasOption(value string) bool {
	for _, o := range q.Options {
		if o == value {
			return true
		}
	}
	return false
}

// IsCloze 题干是否包含填空标记
func (q Question) IsCloze() bool {
	return strings.Contains(q.PromptText, ClozeMarker)
}

// Validate 校验单题数据
func (q Question) Validate() error {
	if len(q.Options) < 2 {
		return fmt.Errorf("question %d: need at least 2 options, got %d", q.ID, len(q.Options))
	}
	seen := make(map[string]bool, len(q.Options))
	for _, o := range q.Options {
		if seen[o] {
			return fmt.Errorf("question %d: duplicate option %q", q.ID, o)
		}
		seen[o] = true
	}
	if !seen[q.CorrectAnswer] {
		return fmt.Errorf("question %d: correct answer %q is not an option", q.ID, q.CorrectAnswer)
	}
	return nil
}

// QuestionSet 按名称标识的有序题集
type QuestionSet struct {
	Key       string     `json:"key"`
	Questions []Question `json:"questions"`
}

// Validate 校验题集内每道题以及 id 唯一性
func (s QuestionSet) Validate() error {
	if len(s.Questions) == 0 {
		return fmt.Errorf("set %q: %w", s.Key, ErrEmptySet)
	}
	ids := make(map[int]bool, len(s.Questions))
	for _, q := range s.Questions {
		if ids[q.ID] {
			return fmt.Errorf("set %q: duplicate question id %d", s.Key, q.ID)
		}
		ids[q.ID] = true
		if err := q.Validate(); err != nil {
			return fmt.Errorf("set %q: %w", s.Key, err)
		}
	}
	return nil
}

// Find 按 id 查找题目
func (s QuestionSet) Find(id int) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}
