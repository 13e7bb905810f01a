package quiz

import (
	"fmt"
	"time"
)

// Snapshot 可持久化的会话进度。恢复时沿用保存的题序，不会重新打乱。
type Snapshot struct {
	SetKey        string         `json:"setKey"`
	QuestionOrder []int          `json:"questionOrder"`
	Answers       map[int]string `json:"answers"`
	CurrentIndex  int            `json:"currentIndex"`
	StartedAt     time.Time      `json:"startedAt"`
	Submitted     bool           `json:"submitted"`
	SavedAt       time.Time      `json:"savedAt"`
}

func (s *Session) Snapshot() Snapshot {
	order := make([]int, len(s.questions))
	for i, q := range s.questions {
		order[i] = q.ID
	}
	return Snapshot{
		SetKey:        s.setKey,
		QuestionOrder: order,
		Answers:       s.Answers(),
		CurrentIndex:  s.current,
		StartedAt:     s.startedAt,
		Submitted:     s.state == StateSubmitted,
		SavedAt:       s.now(),
	}
}

// Restore 从快照恢复进行中的会话。快照题序必须是题集 id 的一个排列，
// 作答必须合法；已提交的快照不可恢复。
func Restore(set QuestionSet, snap Snapshot, opts Options) (*Session, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}
	if snap.Submitted {
		return nil, ErrSnapshotSubmitted
	}
	if len(snap.QuestionOrder) != len(set.Questions) {
		return nil, fmt.Errorf("%w: order has %d ids, set has %d questions",
			ErrInvalidSnapshot, len(snap.QuestionOrder), len(set.Questions))
	}
	byID := make(map[int]Question, len(set.Questions))
	for _, q := range set.Questions {
		byID[q.ID] = q
	}
	order := make([]Question, 0, len(snap.QuestionOrder))
	seen := make(map[int]bool, len(snap.QuestionOrder))
	for _, id := range snap.QuestionOrder {
		q, ok := byID[id]
		if !ok || seen[id] {
			return nil, fmt.Errorf("%w: question id %d", ErrInvalidSnapshot, id)
		}
		seen[id] = true
		order = append(order, q)
	}
	for id, v := range snap.Answers {
		q, ok := byID[id]
		if !ok || !q.HasOption(v) {
			return nil, fmt.Errorf("%w: answer for question %d", ErrInvalidSnapshot, id)
		}
	}
	if snap.CurrentIndex < 0 || snap.CurrentIndex >= len(order) {
		return nil, fmt.Errorf("%w: current index %d", ErrInvalidSnapshot, snap.CurrentIndex)
	}

	s := &Session{setKey: set.Key, set: set, opts: opts}
	s.start(order)
	for id, v := range snap.Answers {
		s.answers[id] = v
		s.visit(s.index[id])
	}
	if !snap.StartedAt.IsZero() {
		s.startedAt = snap.StartedAt
	}
	s.current = snap.CurrentIndex
	s.visit(s.current)
	return s, nil
}
