package quiz

import (
	"time"

	"github.com/google/uuid"
)

type State string

const (
	StateLoading    State = "loading"
	StateInProgress State = "in_progress"
	StateSubmitted  State = "submitted"
)

type Feedback string

const (
	FeedbackNone      Feedback = ""
	FeedbackCorrect   Feedback = "correct"
	FeedbackIncorrect Feedback = "incorrect"
)

// OptionFeedback 选项的反馈样式：正确答案为 correct，
// 用户选错的选项为 incorrect，其余为空
func OptionFeedback(q Question, answer, option string) Feedback {
	if option == q.CorrectAnswer {
		return FeedbackCorrect
	}
	if answer != "" && option == answer && answer != q.CorrectAnswer {
		return FeedbackIncorrect
	}
	return FeedbackNone
}

type QuestionResult struct {
	QuestionID int    `json:"questionId"`
	Answer     string `json:"answer,omitempty"`
	Answered   bool   `json:"answered"`
	Correct    bool   `json:"correct"`
}

// Result 提交后的成绩，提交后不再变化
type Result struct {
	Score       int              `json:"score"`
	Total       int              `json:"total"`
	Answered    int              `json:"answered"`
	Percent     float64          `json:"percent"`
	Questions   []QuestionResult `json:"questions"`
	SubmittedAt time.Time        `json:"submittedAt"`
}

type Options struct {
	// Rand 为 nil 时使用全局随机源
	Rand RandSource
	// Now 为 nil 时使用 time.Now
	Now func() time.Time
	// KeepQuestionOrder 为 true 时不打乱题目顺序
	KeepQuestionOrder bool
	// KeepOptionOrder 为 true 时不打乱选项顺序
	KeepOptionOrder bool
}

// Session 一次答题过程的全部可变状态。
// Session 本身不加锁，调用方负责串行访问。
type Session struct {
	id          string
	setKey      string
	set         QuestionSet
	questions   []Question
	index       map[int]int
	current     int
	answers     map[int]string
	optionOrder map[int][]string
	state       State
	result      *Result
	startedAt   time.Time
	opts        Options
}

// NewSession 以新打乱的题序创建一个进行中的会话
func NewSession(set QuestionSet, opts Options) (*Session, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}
	s := &Session{setKey: set.Key, set: set, opts: opts}
	s.start(nil)
	return s, nil
}

func (s *Session) now() time.Time {
	if s.opts.Now != nil {
		return s.opts.Now()
	}
	return time.Now()
}

// start 重置所有可变状态；order 为 nil 时重新打乱题序
func (s *Session) start(order []Question) {
	if order == nil {
		if s.opts.KeepQuestionOrder {
			order = append([]Question(nil), s.set.Questions...)
		} else {
			order = Shuffle(s.set.Questions, s.opts.Rand)
		}
	}
	s.id = uuid.New().String()
	s.questions = order
	s.index = make(map[int]int, len(order))
	for i, q := range order {
		s.index[q.ID] = i
	}
	s.current = 0
	s.answers = make(map[int]string)
	s.optionOrder = make(map[int][]string)
	s.state = StateInProgress
	s.result = nil
	s.startedAt = s.now()
	s.visit(0)
}

// visit 首次展示某题时固定其选项顺序
func (s *Session) visit(i int) {
	q := s.questions[i]
	if _, ok := s.optionOrder[q.ID]; ok {
		return
	}
	if s.opts.KeepOptionOrder {
		s.optionOrder[q.ID] = append([]string(nil), q.Options...)
		return
	}
	s.optionOrder[q.ID] = Shuffle(q.Options, s.opts.Rand)
}

// ID 会话实例 id，每次 Reset 都会变化
func (s *Session) ID() string           { return s.id }
func (s *Session) SetKey() string       { return s.setKey }
func (s *Session) State() State         { return s.state }
func (s *Session) Submitted() bool      { return s.state == StateSubmitted }
func (s *Session) CurrentIndex() int    { return s.current }
func (s *Session) Len() int             { return len(s.questions) }
func (s *Session) StartedAt() time.Time { return s.startedAt }
func (s *Session) IsLast() bool         { return s.current == len(s.questions)-1 }
func (s *Session) AnsweredCount() int   { return len(s.answers) }
func (s *Session) Current() Question    { return s.questions[s.current] }

// Questions 返回当前题序的副本
func (s *Session) Questions() []Question {
	return append([]Question(nil), s.questions...)
}

func (s *Session) Answer(questionID int) (string, bool) {
	v, ok := s.answers[questionID]
	return v, ok
}

func (s *Session) IsAnswered(questionID int) bool {
	_, ok := s.answers[questionID]
	return ok
}

// Answers 返回已作答记录的副本
func (s *Session) Answers() map[int]string {
	out := make(map[int]string, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// OptionOrder 返回已固定的选项顺序，尚未展示过的题返回 nil
func (s *Session) OptionOrder(questionID int) []string {
	order, ok := s.optionOrder[questionID]
	if !ok {
		return nil
	}
	return append([]string(nil), order...)
}

// PresentAll 一次性固定所有题的选项顺序（整页模式）
func (s *Session) PresentAll() {
	for i := range s.questions {
		s.visit(i)
	}
}

// SelectAnswer 为当前题作答。已提交、非当前题、已作答或值不在选项中时静默拒绝。
func (s *Session) SelectAnswer(questionID int, value string) bool {
	if s.state != StateInProgress || s.questions[s.current].ID != questionID {
		return false
	}
	return s.record(questionID, value)
}

// SelectAnswerAt 为任意一题作答（整页模式），约束同 SelectAnswer
func (s *Session) SelectAnswerAt(questionID int, value string) bool {
	if s.state != StateInProgress {
		return false
	}
	return s.record(questionID, value)
}

func (s *Session) record(questionID int, value string) bool {
	i, ok := s.index[questionID]
	if !ok {
		return false
	}
	if _, answered := s.answers[questionID]; answered {
		return false
	}
	if !s.questions[i].HasOption(value) {
		return false
	}
	s.answers[questionID] = value
	s.visit(i)
	return true
}

func (s *Session) GoNext() bool {
	return s.JumpTo(s.current + 1)
}

func (s *Session) GoPrevious() bool {
	return s.JumpTo(s.current - 1)
}

// JumpTo 直接跳题，越界时不移动
func (s *Session) JumpTo(i int) bool {
	if i < 0 || i >= len(s.questions) || i == s.current {
		return false
	}
	s.current = i
	s.visit(i)
	return true
}

// Submit 交卷并计分。未作答任何题或重复提交时返回 false，
// 重复提交时同时返回已冻结的成绩。
func (s *Session) Submit() (Result, bool) {
	if s.state == StateSubmitted {
		return *s.result, false
	}
	if s.state != StateInProgress || len(s.answers) == 0 {
		return Result{}, false
	}
	res := Result{
		Total:       len(s.questions),
		Answered:    len(s.answers),
		Questions:   make([]QuestionResult, 0, len(s.questions)),
		SubmittedAt: s.now(),
	}
	for _, q := range s.questions {
		ans, answered := s.answers[q.ID]
		correct := answered && ans == q.CorrectAnswer
		if correct {
			res.Score++
		}
		res.Questions = append(res.Questions, QuestionResult{
			QuestionID: q.ID,
			Answer:     ans,
			Answered:   answered,
			Correct:    correct,
		})
	}
	res.Percent = Percent(res.Score, res.Total)
	s.result = &res
	s.state = StateSubmitted
	return res, true
}

// Result 返回提交后的成绩
func (s *Session) Result() (Result, bool) {
	if s.result == nil {
		return Result{}, false
	}
	return *s.result, true
}

// Reset 清空作答并以新题序重新开始
func (s *Session) Reset() {
	s.start(nil)
}

// ClearAnswers 清除全部作答但保留题序，提交后不可用
func (s *Session) ClearAnswers() bool {
	if s.state != StateInProgress {
		return false
	}
	s.answers = make(map[int]string)
	return true
}
