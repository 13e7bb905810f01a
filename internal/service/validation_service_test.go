package service

import (
	"testing"

	"vocab_quiz_backend/internal/content"
	"vocab_quiz_backend/internal/repository"
)

func TestValidateDocuments(t *testing.T) {
	sets, err := repository.ParseQuestionDocument([]byte(`{
	  "tag-1": [
	    {"id": 1, "question": "Ich bin _____ (tired)", "options": ["müde", "froh"], "correct": "müde"},
	    {"id": 2, "question": "Er _____ nach Hause", "options": ["geht", "gehst"], "correct": "geht"}
	  ],
	  "tag-2": [
	    {"id": 1, "question": "Haus", "options": ["house", "house"], "correct": "house"}
	  ]
	}`))
	if err != nil {
		t.Fatal(err)
	}
	doc, err := content.Parse([]byte(`{"levels": {"A1": {"weeks": {"1": {"tags": {"t": {"sections": [
	  {"title": "ok", "quizSet": "tag-1"},
	  {"title": "broken", "quizSet": "tag-9"}
	]}}}}}}}`))
	if err != nil {
		t.Fatal(err)
	}

	report := ValidateDocuments(sets, doc)
	if report.Sets != 2 || report.Questions != 3 || report.Cloze != 2 {
		t.Fatalf("report = %+v", report)
	}
	if !report.HasErrors() {
		t.Fatal("expected errors")
	}

	var warnings, errs int
	for _, is := range report.Issues {
		switch is.Severity {
		case SeverityWarning:
			warnings++
			if is.Set != "tag-1" || is.Question != 2 {
				t.Fatalf("warning = %+v", is)
			}
		case SeverityError:
			errs++
		}
	}
	// tag-2 重复选项，tag-9 不存在
	if warnings != 1 || errs != 2 {
		t.Fatalf("issues = %+v", report.Issues)
	}
}

func TestValidateEmptyDocument(t *testing.T) {
	report := ValidateDocuments(nil, nil)
	if !report.HasErrors() || len(report.Issues) != 1 {
		t.Fatalf("report = %+v", report)
	}
}
