package quiz

// RenderMode 只影响展示方式，状态机只有一套
type RenderMode string

const (
	RenderSingle RenderMode = "single"
	RenderAll    RenderMode = "all"
)

// AdvancePolicy 作答后自动跳到下一题的策略
type AdvancePolicy string

const (
	// AdvanceAlways 定时器到点后无论用户是否已手动跳题都前进一题
	AdvanceAlways AdvancePolicy = "always"
	// AdvanceIfUnmoved 仅当用户仍停留在刚作答的题上时前进
	AdvanceIfUnmoved AdvancePolicy = "if_unmoved"
	AdvanceOff       AdvancePolicy = "off"
)

type Controls struct {
	Previous bool `json:"previous"`
	Next     bool `json:"next"`
	Submit   bool `json:"submit"`
	Answer   bool `json:"answer"`
	Clear    bool `json:"clear"`
	Reset    bool `json:"reset"`
}

type ActionKind string

const (
	ActionSelect   ActionKind = "select"
	ActionNext     ActionKind = "next"
	ActionPrevious ActionKind = "previous"
	ActionJump     ActionKind = "jump"
	ActionSubmit   ActionKind = "submit"
	ActionReset    ActionKind = "reset"
	ActionClear    ActionKind = "clear"
)

type Action struct {
	Kind       ActionKind
	QuestionID int
	Value      string
	Index      int
}

// Outcome 描述一次操作对会话造成的变化
type Outcome struct {
	Moved     bool
	Answered  bool
	Cleared   bool
	Submitted bool
	Reset     bool
	// PreviousID 重置前的会话实例 id
	PreviousID string
	Result     *Result
}

// Changed 是否需要持久化
func (o Outcome) Changed() bool {
	return o.Moved || o.Answered || o.Cleared || o.Submitted || o.Reset
}

// Navigator 把界面意图翻译为会话操作，自身不持有状态
type Navigator struct {
	Session *Session
	Mode    RenderMode
}

func (n Navigator) Controls() Controls {
	s := n.Session
	open := !s.Submitted()
	c := Controls{
		Answer: open,
		Clear:  open && s.AnsweredCount() > 0,
		Reset:  true,
	}
	if n.Mode == RenderAll {
		c.Submit = open && s.AnsweredCount() > 0
		return c
	}
	c.Previous = s.CurrentIndex() > 0
	c.Next = open && s.IsAnswered(s.Current().ID) && !s.IsLast()
	c.Submit = open && s.IsLast() && s.AnsweredCount() > 0
	return c
}

// Dispatch 执行一次用户操作。被禁用的导航/提交返回 ErrControlDisabled，
// 非法作答静默忽略。
func (n Navigator) Dispatch(a Action) (Outcome, error) {
	s := n.Session
	c := n.Controls()
	switch a.Kind {
	case ActionSelect:
		if !c.Answer {
			return Outcome{}, nil
		}
		if n.Mode == RenderAll {
			return Outcome{Answered: s.SelectAnswerAt(a.QuestionID, a.Value)}, nil
		}
		return Outcome{Answered: s.SelectAnswer(a.QuestionID, a.Value)}, nil
	case ActionNext:
		if !c.Next {
			return Outcome{}, ErrControlDisabled
		}
		return Outcome{Moved: s.GoNext()}, nil
	case ActionPrevious:
		if !c.Previous {
			return Outcome{}, ErrControlDisabled
		}
		return Outcome{Moved: s.GoPrevious()}, nil
	case ActionJump:
		i := a.Index
		if i < 0 {
			i = 0
		}
		if i >= s.Len() {
			i = s.Len() - 1
		}
		return Outcome{Moved: s.JumpTo(i)}, nil
	case ActionSubmit:
		if s.Submitted() {
			res, _ := s.Submit()
			return Outcome{Result: &res}, nil
		}
		if !c.Submit {
			return Outcome{}, ErrControlDisabled
		}
		res, ok := s.Submit()
		if !ok {
			return Outcome{}, ErrControlDisabled
		}
		return Outcome{Submitted: true, Result: &res}, nil
	case ActionReset:
		prev := s.ID()
		s.Reset()
		return Outcome{Reset: true, PreviousID: prev}, nil
	case ActionClear:
		if !c.Clear {
			return Outcome{}, nil
		}
		return Outcome{Cleared: s.ClearAnswers()}, nil
	}
	return Outcome{}, ErrUnknownAction
}

// AutoAdvance 自动前进定时器的落点。fromIndex 为作答时所在题号。
func (n Navigator) AutoAdvance(fromIndex int, policy AdvancePolicy) bool {
	s := n.Session
	if s.Submitted() || n.Mode == RenderAll {
		return false
	}
	switch policy {
	case AdvanceAlways:
		return s.GoNext()
	case AdvanceIfUnmoved:
		if s.CurrentIndex() != fromIndex {
			return false
		}
		return s.GoNext()
	}
	return false
}
