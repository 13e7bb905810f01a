// Package view 把测验会话投影为前端可直接渲染的数据。
// 这里只读会话状态，不做任何修改。
package view

import (
	"vocab_quiz_backend/internal/quiz"
)

// MilestoneEvery 每答满这么多题标记一次进度里程碑
const MilestoneEvery = 10

type Config struct {
	Mode              quiz.RenderMode
	Sidebar           bool
	ImmediateFeedback bool
	Tiers             quiz.TierPolicy
}

type OptionView struct {
	Value    string        `json:"value"`
	Selected bool          `json:"selected"`
	Feedback quiz.Feedback `json:"feedback,omitempty"`
}

type QuestionView struct {
	ID       int          `json:"id"`
	Number   int          `json:"number"`
	Prompt   string       `json:"prompt"`
	Category string       `json:"category,omitempty"`
	Cloze    bool         `json:"cloze"`
	Answered bool         `json:"answered"`
	Answer   string       `json:"answer,omitempty"`
	Disabled bool         `json:"disabled"`
	Correct  *bool        `json:"correct,omitempty"`
	Options  []OptionView `json:"options"`
}

type ProgressView struct {
	Current   int     `json:"current"`
	Total     int     `json:"total"`
	Answered  int     `json:"answered"`
	Percent   float64 `json:"percent"`
	Milestone bool    `json:"milestone"`
}

type SidebarItem struct {
	Index    int  `json:"index"`
	Number   int  `json:"number"`
	Answered bool `json:"answered"`
	Current  bool `json:"current"`
}

type ResultsView struct {
	Score     int            `json:"score"`
	Total     int            `json:"total"`
	Answered  int            `json:"answered"`
	Percent   float64        `json:"percent"`
	Tier      quiz.Tier      `json:"tier"`
	Questions []QuestionView `json:"questions"`
}

// QuizPage 一次渲染的完整结果
type QuizPage struct {
	SessionID string          `json:"sessionId,omitempty"`
	Set       string          `json:"set"`
	State     quiz.State      `json:"state"`
	Mode      quiz.RenderMode `json:"mode"`
	Question  *QuestionView   `json:"question,omitempty"`
	Questions []QuestionView  `json:"questions,omitempty"`
	Progress  ProgressView    `json:"progress"`
	Sidebar   []SidebarItem   `json:"sidebar,omitempty"`
	Controls  quiz.Controls   `json:"controls"`
	Results   *ResultsView    `json:"results,omitempty"`
}

// Unavailable 题集加载失败时的空页面
func Unavailable(setKey string) QuizPage {
	return QuizPage{Set: setKey, State: quiz.StateLoading}
}

// Render 投影会话。整页模式下调用方应先对会话执行 PresentAll，
// 否则未展示过的题按原始选项顺序输出。
func Render(s *quiz.Session, cfg Config) QuizPage {
	mode := cfg.Mode
	if mode == "" {
		mode = quiz.RenderSingle
	}
	nav := quiz.Navigator{Session: s, Mode: mode}
	page := QuizPage{
		SessionID: s.ID(),
		Set:       s.SetKey(),
		State:     s.State(),
		Mode:      mode,
		Progress:  progress(s),
		Controls:  nav.Controls(),
	}

	questions := s.Questions()
	if mode == quiz.RenderAll {
		page.Questions = make([]QuestionView, 0, len(questions))
		for i, q := range questions {
			page.Questions = append(page.Questions, question(s, q, i, cfg))
		}
	} else {
		qv := question(s, s.Current(), s.CurrentIndex(), cfg)
		page.Question = &qv
		if cfg.Sidebar {
			page.Sidebar = sidebar(s, questions)
		}
	}

	if res, ok := s.Result(); ok {
		page.Results = results(s, res, questions, cfg)
	}
	return page
}

func question(s *quiz.Session, q quiz.Question, i int, cfg Config) QuestionView {
	answer, answered := s.Answer(q.ID)
	reveal := s.Submitted() || (cfg.ImmediateFeedback && answered)

	qv := QuestionView{
		ID:       q.ID,
		Number:   i + 1,
		Prompt:   q.PromptText,
		Category: q.Category,
		Cloze:    q.IsCloze(),
		Answered: answered,
		Answer:   answer,
		Disabled: answered || s.Submitted(),
	}
	if reveal && answered {
		ok := answer == q.CorrectAnswer
		qv.Correct = &ok
	}

	order := s.OptionOrder(q.ID)
	if order == nil {
		order = q.Options
	}
	qv.Options = make([]OptionView, 0, len(order))
	for _, opt := range order {
		ov := OptionView{Value: opt, Selected: answered && opt == answer}
		if reveal {
			ov.Feedback = quiz.OptionFeedback(q, answer, opt)
		}
		qv.Options = append(qv.Options, ov)
	}
	return qv
}

func progress(s *quiz.Session) ProgressView {
	n := s.AnsweredCount()
	return ProgressView{
		Current:   s.CurrentIndex() + 1,
		Total:     s.Len(),
		Answered:  n,
		Percent:   quiz.Percent(n, s.Len()),
		Milestone: n > 0 && n%MilestoneEvery == 0,
	}
}

func sidebar(s *quiz.Session, questions []quiz.Question) []SidebarItem {
	items := make([]SidebarItem, 0, len(questions))
	for i, q := range questions {
		items = append(items, SidebarItem{
			Index:    i,
			Number:   i + 1,
			Answered: s.IsAnswered(q.ID),
			Current:  i == s.CurrentIndex(),
		})
	}
	return items
}

func results(s *quiz.Session, res quiz.Result, questions []quiz.Question, cfg Config) *ResultsView {
	tiers := cfg.Tiers
	if len(tiers) == 0 {
		tiers = quiz.DefaultTierPolicy()
	}
	rv := &ResultsView{
		Score:     res.Score,
		Total:     res.Total,
		Answered:  res.Answered,
		Percent:   res.Percent,
		Tier:      tiers.Evaluate(res.Percent),
		Questions: make([]QuestionView, 0, len(questions)),
	}
	for i, q := range questions {
		rv.Questions = append(rv.Questions, question(s, q, i, cfg))
	}
	return rv
}
