package service

import (
	"fmt"
	"strings"

	"vocab_quiz_backend/internal/content"
	"vocab_quiz_backend/internal/quiz"
	"vocab_quiz_backend/internal/util"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue 数据校验发现的一个问题
type Issue struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Set      string   `json:"set,omitempty" yaml:"set,omitempty"`
	Question int      `json:"question,omitempty" yaml:"question,omitempty"`
	Message  string   `json:"message" yaml:"message"`
}

// ValidationReport 题库与内容文档的只读检查结果
type ValidationReport struct {
	Sets      int     `json:"sets" yaml:"sets"`
	Questions int     `json:"questions" yaml:"questions"`
	Cloze     int     `json:"cloze" yaml:"cloze"`
	Issues    []Issue `json:"issues" yaml:"issues"`
}

func (r *ValidationReport) HasErrors() bool {
	for _, is := range r.Issues {
		if is.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (r *ValidationReport) add(sev Severity, set string, id int, format string, args ...interface{}) {
	r.Issues = append(r.Issues, Issue{Severity: sev, Set: set, Question: id, Message: fmt.Sprintf(format, args...)})
}

// ValidateDocuments 检查每个题集能否开始答题，填空题是否带提示，
// 以及内容文档中的 quizSet 是否都指向存在的题集。doc 可以为 nil。
func ValidateDocuments(sets *util.OrderedMap[[]quiz.Question], doc *content.Document) ValidationReport {
	var report ValidationReport
	if sets == nil || sets.Len() == 0 {
		report.add(SeverityError, "", 0, "question document has no sets")
		return report
	}

	for _, key := range sets.Keys() {
		questions, _ := sets.Get(key)
		report.Sets++
		report.Questions += len(questions)

		if err := (quiz.QuestionSet{Key: key, Questions: questions}).Validate(); err != nil {
			report.add(SeverityError, key, 0, "%v", err)
		}
		for _, q := range questions {
			if !q.IsCloze() {
				continue
			}
			report.Cloze++
			if !strings.Contains(q.PromptText, "(") {
				report.add(SeverityWarning, key, q.ID, "cloze prompt has no hint")
			}
			if strings.Count(q.PromptText, quiz.ClozeMarker) > 1 {
				report.add(SeverityWarning, key, q.ID, "cloze prompt has more than one blank")
			}
		}
	}

	if doc == nil {
		return report
	}
	for _, lk := range doc.Levels.Keys() {
		level, _ := doc.Levels.Get(lk)
		for _, wk := range level.Weeks.Keys() {
			week, _ := level.Weeks.Get(wk)
			for _, tk := range week.Tags.Keys() {
				tag, _ := week.Tags.Get(tk)
				for i, sec := range tag.Sections {
					if !sec.HasQuiz() {
						continue
					}
					if _, ok := sets.Get(sec.QuizSet); !ok {
						report.add(SeverityError, sec.QuizSet, 0,
							"content %s/%s/%s section %d links to unknown set", lk, wk, tk, i)
					}
				}
			}
		}
	}
	return report
}
