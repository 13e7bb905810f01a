package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"vocab_quiz_backend/internal/model"
	"vocab_quiz_backend/internal/quiz"
	"vocab_quiz_backend/internal/repository"
	"vocab_quiz_backend/internal/util"
	"vocab_quiz_backend/internal/view"
)

type stubQuestions struct {
	keys        []string
	sets        map[string][]quiz.Question
	err         error
	invalidated int
}

func (s *stubQuestions) SetKeys(ctx context.Context) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.keys, nil
}

func (s *stubQuestions) Get(ctx context.Context, key string) (quiz.QuestionSet, error) {
	if s.err != nil {
		return quiz.QuestionSet{}, s.err
	}
	qs, ok := s.sets[key]
	if !ok {
		return quiz.QuestionSet{}, fmt.Errorf("%w: %q", util.ErrSetNotFound, key)
	}
	return quiz.QuestionSet{Key: key, Questions: qs}, nil
}

func (s *stubQuestions) First(ctx context.Context) (quiz.QuestionSet, error) {
	if s.err != nil {
		return quiz.QuestionSet{}, s.err
	}
	return s.Get(ctx, s.keys[0])
}

func (s *stubQuestions) Invalidate() { s.invalidated++ }

func newStubQuestions(sizes ...int) *stubQuestions {
	s := &stubQuestions{sets: make(map[string][]quiz.Question)}
	for i, n := range sizes {
		key := fmt.Sprintf("tag-%d", i+1)
		s.keys = append(s.keys, key)
		for id := 1; id <= n; id++ {
			s.sets[key] = append(s.sets[key], quiz.Question{
				ID:            id,
				PromptText:    fmt.Sprintf("Frage %d", id),
				Options:       []string{"richtig", "falsch"},
				CorrectAnswer: "richtig",
			})
		}
	}
	return s
}

type fakeTask struct {
	owner string
	delay time.Duration
	fn    func()
}

type fakeScheduler struct {
	mu        sync.Mutex
	tasks     []fakeTask
	cancelled []string
}

func (f *fakeScheduler) After(owner string, d time.Duration, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, fakeTask{owner: owner, delay: d, fn: fn})
}

func (f *fakeScheduler) Cancel(owner string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, owner)
	kept := f.tasks[:0]
	for _, t := range f.tasks {
		if t.owner != owner {
			kept = append(kept, t)
		}
	}
	f.tasks = kept
}

func (f *fakeScheduler) Stop() {}

func (f *fakeScheduler) pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tasks)
}

// runAll 触发全部待执行任务
func (f *fakeScheduler) runAll() {
	f.mu.Lock()
	tasks := f.tasks
	f.tasks = nil
	f.mu.Unlock()
	for _, t := range tasks {
		t.fn()
	}
}

type fakeResults struct {
	created []model.QuizResult
}

func (f *fakeResults) Create(ctx context.Context, r *model.QuizResult) error {
	f.created = append(f.created, *r)
	return nil
}

func (f *fakeResults) ListBySet(ctx context.Context, setKey string, limit int) ([]model.QuizResult, error) {
	var out []model.QuizResult
	for _, r := range f.created {
		if r.SetKey == setKey {
			out = append(out, r)
		}
	}
	return out, nil
}

type failingStore struct{}

func (failingStore) Save(ctx context.Context, setKey string, snap quiz.Snapshot) error {
	return errors.New("storage unavailable")
}
func (failingStore) Load(ctx context.Context, setKey string) (*quiz.Snapshot, error) {
	return nil, errors.New("storage unavailable")
}
func (failingStore) Clear(ctx context.Context, setKey string) error {
	return errors.New("storage unavailable")
}

func testPolicy(advance quiz.AdvancePolicy) QuizPolicy {
	return QuizPolicy{
		AutoAdvanceDelay: time.Second,
		ClearDelay:       time.Second,
		AdvancePolicy:    advance,
		View:             view.Config{Mode: quiz.RenderSingle},
	}
}

func newTestService(t *testing.T, advance quiz.AdvancePolicy, sizes ...int) (*QuizService, *fakeScheduler, *repository.MemoryProgressStore) {
	t.Helper()
	sched := &fakeScheduler{}
	store := repository.NewMemoryProgressStore()
	svc := NewQuizService(newStubQuestions(sizes...), store, nil, sched, testPolicy(advance))
	return svc, sched, store
}

func answer(id int, value string) quiz.Action {
	return quiz.Action{Kind: quiz.ActionSelect, QuestionID: id, Value: value}
}

func TestOpenFallsBackToFirstSet(t *testing.T) {
	svc, _, _ := newTestService(t, quiz.AdvanceOff, 2, 3)
	ctx := context.Background()

	page, err := svc.Open(ctx, "tag-9")
	if err != nil {
		t.Fatal(err)
	}
	if page.Set != "tag-1" || page.Progress.Total != 2 {
		t.Fatalf("page = %+v", page)
	}
	page, err = svc.Open(ctx, "tag-2")
	if err != nil || page.Set != "tag-2" || page.Progress.Total != 3 {
		t.Fatalf("page = %+v err = %v", page, err)
	}
	page, _ = svc.Open(ctx, "")
	if page.Set != "tag-1" {
		t.Fatalf("default set = %s", page.Set)
	}
}

func TestOpenUnavailable(t *testing.T) {
	qs := newStubQuestions(1)
	qs.err = fmt.Errorf("%w: connection refused", util.ErrSetUnavailable)
	svc := NewQuizService(qs, nil, nil, &fakeScheduler{}, testPolicy(quiz.AdvanceOff))

	page, err := svc.Open(context.Background(), "tag-1")
	if !errors.Is(err, util.ErrSetUnavailable) {
		t.Fatalf("err = %v", err)
	}
	if page.State != quiz.StateLoading || page.Question != nil {
		t.Fatalf("page = %+v", page)
	}
}

func TestNextRequiresAnswer(t *testing.T) {
	svc, _, _ := newTestService(t, quiz.AdvanceOff, 2)
	ctx := context.Background()

	page, err := svc.Dispatch(ctx, "tag-1", quiz.Action{Kind: quiz.ActionNext})
	if !errors.Is(err, quiz.ErrControlDisabled) {
		t.Fatalf("err = %v", err)
	}
	if page.Progress.Current != 1 {
		t.Fatalf("moved without answer: %+v", page.Progress)
	}

	if _, err := svc.Dispatch(ctx, "tag-1", answer(1, "richtig")); err != nil {
		t.Fatal(err)
	}
	page, err = svc.Dispatch(ctx, "tag-1", quiz.Action{Kind: quiz.ActionNext})
	if err != nil || page.Question.ID != 2 {
		t.Fatalf("page = %+v err = %v", page.Question, err)
	}
}

func TestAutoAdvancePolicies(t *testing.T) {
	tests := []struct {
		policy quiz.AdvancePolicy
		// 作答后用户立即手动跳到下一题，再触发定时器
		wantIndex int
	}{
		{quiz.AdvanceAlways, 3},
		{quiz.AdvanceIfUnmoved, 2},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			svc, sched, _ := newTestService(t, tt.policy, 4)
			ctx := context.Background()

			svc.Dispatch(ctx, "tag-1", answer(1, "richtig"))
			if sched.pending() != 1 || sched.tasks[0].delay != time.Second {
				t.Fatalf("tasks = %+v", sched.tasks)
			}
			svc.Dispatch(ctx, "tag-1", quiz.Action{Kind: quiz.ActionNext})
			sched.runAll()

			page, _ := svc.Open(ctx, "tag-1")
			if page.Progress.Current != tt.wantIndex {
				t.Fatalf("current = %d, want %d", page.Progress.Current, tt.wantIndex)
			}
		})
	}
}

func TestAutoAdvanceMovesAndPersists(t *testing.T) {
	svc, sched, store := newTestService(t, quiz.AdvanceIfUnmoved, 3)
	ctx := context.Background()

	svc.Dispatch(ctx, "tag-1", answer(1, "falsch"))
	sched.runAll()

	snap, err := store.Load(ctx, "tag-1")
	if err != nil || snap == nil {
		t.Fatalf("snapshot = %v err = %v", snap, err)
	}
	if snap.CurrentIndex != 1 || snap.Answers[1] != "falsch" {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestAdvanceOffSchedulesNothing(t *testing.T) {
	svc, sched, _ := newTestService(t, quiz.AdvanceOff, 2)
	svc.Dispatch(context.Background(), "tag-1", answer(1, "richtig"))
	if sched.pending() != 0 {
		t.Fatalf("pending = %d", sched.pending())
	}
}

func TestResetDiscardsPendingTasks(t *testing.T) {
	svc, sched, store := newTestService(t, quiz.AdvanceAlways, 3)
	ctx := context.Background()

	first, _ := svc.Dispatch(ctx, "tag-1", answer(1, "richtig"))
	page, err := svc.Dispatch(ctx, "tag-1", quiz.Action{Kind: quiz.ActionReset})
	if err != nil {
		t.Fatal(err)
	}
	if page.SessionID == first.SessionID {
		t.Fatal("reset kept the session id")
	}
	if len(sched.cancelled) != 1 || sched.cancelled[0] != first.SessionID {
		t.Fatalf("cancelled = %v", sched.cancelled)
	}
	if sched.pending() != 0 {
		t.Fatalf("pending = %d", sched.pending())
	}
	if snap, _ := store.Load(ctx, "tag-1"); snap != nil {
		t.Fatal("reset left saved progress")
	}
	if page.Progress.Answered != 0 || page.Progress.Current != 1 {
		t.Fatalf("progress = %+v", page.Progress)
	}
}

func TestStaleTimerIgnored(t *testing.T) {
	svc, sched, _ := newTestService(t, quiz.AdvanceAlways, 3)
	ctx := context.Background()

	svc.Dispatch(ctx, "tag-1", answer(1, "richtig"))
	stale := sched.tasks[0]
	svc.Dispatch(ctx, "tag-1", quiz.Action{Kind: quiz.ActionReset})

	// 即使旧任务被外部触发，也不会作用于新会话
	stale.fn()
	page, _ := svc.Open(ctx, "tag-1")
	if page.Progress.Current != 1 {
		t.Fatalf("stale timer moved new session to %d", page.Progress.Current)
	}
}

func TestResumeFromSavedProgress(t *testing.T) {
	sched := &fakeScheduler{}
	store := repository.NewMemoryProgressStore()
	policy := testPolicy(quiz.AdvanceOff)
	policy.ShuffleQuestions = true
	policy.ShuffleOptions = true
	ctx := context.Background()

	first := NewQuizService(newStubQuestions(5), store, nil, sched, policy)
	page, _ := first.Open(ctx, "tag-1")
	qid := page.Question.ID
	first.Dispatch(ctx, "tag-1", answer(qid, "richtig"))
	page, _ = first.Dispatch(ctx, "tag-1", quiz.Action{Kind: quiz.ActionNext})
	wantSnap, _ := store.Load(ctx, "tag-1")

	second := NewQuizService(newStubQuestions(5), store, nil, sched, policy)
	resumed, err := second.Open(ctx, "tag-1")
	if err != nil {
		t.Fatal(err)
	}
	if resumed.Progress.Current != 2 || resumed.Progress.Answered != 1 || resumed.Question.ID != page.Question.ID {
		t.Fatalf("resumed = %+v", resumed.Progress)
	}
	if _, err := second.Dispatch(ctx, "tag-1", quiz.Action{Kind: quiz.ActionPrevious}); err != nil {
		t.Fatal(err)
	}
	gotSnap, _ := store.Load(ctx, "tag-1")
	if !reflect.DeepEqual(gotSnap.QuestionOrder, wantSnap.QuestionOrder) {
		t.Fatalf("order changed on resume: %v vs %v", gotSnap.QuestionOrder, wantSnap.QuestionOrder)
	}
}

func TestInvalidSavedProgressStartsFresh(t *testing.T) {
	svc, _, store := newTestService(t, quiz.AdvanceOff, 2)
	ctx := context.Background()
	store.Save(ctx, "tag-1", quiz.Snapshot{SetKey: "tag-1", QuestionOrder: []int{1, 7}})

	page, err := svc.Open(ctx, "tag-1")
	if err != nil || page.Progress.Total != 2 || page.Progress.Answered != 0 {
		t.Fatalf("page = %+v err = %v", page, err)
	}
	if snap, _ := store.Load(ctx, "tag-1"); snap != nil {
		t.Fatal("invalid snapshot was kept")
	}
}

func TestPersistenceFailuresAreNotFatal(t *testing.T) {
	svc := NewQuizService(newStubQuestions(2), failingStore{}, nil, &fakeScheduler{}, testPolicy(quiz.AdvanceOff))
	ctx := context.Background()

	if _, err := svc.Open(ctx, "tag-1"); err != nil {
		t.Fatal(err)
	}
	page, err := svc.Dispatch(ctx, "tag-1", answer(1, "richtig"))
	if err != nil || page.Progress.Answered != 1 {
		t.Fatalf("page = %+v err = %v", page.Progress, err)
	}
}

func TestSubmitRecordsResult(t *testing.T) {
	sched := &fakeScheduler{}
	store := repository.NewMemoryProgressStore()
	results := &fakeResults{}
	svc := NewQuizService(newStubQuestions(2), store, results, sched, testPolicy(quiz.AdvanceOff))
	ctx := context.Background()

	svc.Dispatch(ctx, "tag-1", answer(1, "richtig"))
	if _, err := svc.Dispatch(ctx, "tag-1", quiz.Action{Kind: quiz.ActionSubmit}); !errors.Is(err, quiz.ErrControlDisabled) {
		t.Fatalf("submit before last question err = %v", err)
	}
	svc.Dispatch(ctx, "tag-1", quiz.Action{Kind: quiz.ActionNext})
	svc.Dispatch(ctx, "tag-1", answer(2, "falsch"))

	page, err := svc.Dispatch(ctx, "tag-1", quiz.Action{Kind: quiz.ActionSubmit})
	if err != nil {
		t.Fatal(err)
	}
	if page.Results == nil || page.Results.Score != 1 || page.Results.Tier.Name != quiz.TierKeepPracticing {
		t.Fatalf("results = %+v", page.Results)
	}

	// 清除之前仍保存着已提交状态
	snap, _ := store.Load(ctx, "tag-1")
	if snap == nil || !snap.Submitted {
		t.Fatalf("snapshot before clear = %+v", snap)
	}

	again, err := svc.Dispatch(ctx, "tag-1", quiz.Action{Kind: quiz.ActionSubmit})
	if err != nil || again.Results.Score != 1 {
		t.Fatalf("second submit = %+v err = %v", again.Results, err)
	}
	if len(results.created) != 1 {
		t.Fatalf("recorded %d results", len(results.created))
	}
	r := results.created[0]
	if r.SetKey != "tag-1" || r.Score != 1 || r.Total != 2 || r.SessionID != page.SessionID {
		t.Fatalf("record = %+v", r)
	}

	history, err := svc.History(ctx, "tag-1", 0)
	if err != nil || len(history) != 1 {
		t.Fatalf("history = %v err = %v", history, err)
	}
}

func TestSubmittedSessionExpires(t *testing.T) {
	svc, sched, store := newTestService(t, quiz.AdvanceOff, 1)
	ctx := context.Background()

	svc.Dispatch(ctx, "tag-1", answer(1, "richtig"))
	submitted, err := svc.Dispatch(ctx, "tag-1", quiz.Action{Kind: quiz.ActionSubmit})
	if err != nil {
		t.Fatal(err)
	}

	// 清除之前仍展示结果页
	page, _ := svc.Open(ctx, "tag-1")
	if page.State != quiz.StateSubmitted || page.SessionID != submitted.SessionID {
		t.Fatalf("before clear state=%s session=%s", page.State, page.SessionID)
	}

	sched.runAll()
	if snap, _ := store.Load(ctx, "tag-1"); snap != nil {
		t.Fatal("progress not cleared after submit")
	}
	page, err = svc.Open(ctx, "tag-1")
	if err != nil {
		t.Fatal(err)
	}
	if page.State != quiz.StateInProgress || page.SessionID == submitted.SessionID || page.Progress.Answered != 0 {
		t.Fatalf("after clear state=%s session=%s answered=%d", page.State, page.SessionID, page.Progress.Answered)
	}
}

func TestExpiryIgnoredAfterReset(t *testing.T) {
	svc, sched, _ := newTestService(t, quiz.AdvanceOff, 1)
	ctx := context.Background()

	svc.Dispatch(ctx, "tag-1", answer(1, "richtig"))
	submitted, _ := svc.Dispatch(ctx, "tag-1", quiz.Action{Kind: quiz.ActionSubmit})
	expire := sched.tasks[0].fn

	fresh, err := svc.Dispatch(ctx, "tag-1", quiz.Action{Kind: quiz.ActionReset})
	if err != nil {
		t.Fatal(err)
	}
	svc.Dispatch(ctx, "tag-1", answer(1, "falsch"))

	// 旧会话的清除任务不能销毁新会话
	expire()
	page, _ := svc.Open(ctx, "tag-1")
	if page.SessionID != fresh.SessionID || page.SessionID == submitted.SessionID || page.Progress.Answered != 1 {
		t.Fatalf("fresh session disturbed: session=%s answered=%d", page.SessionID, page.Progress.Answered)
	}
}

func TestHistoryWithoutDatabase(t *testing.T) {
	svc, _, _ := newTestService(t, quiz.AdvanceOff, 1)
	if _, err := svc.History(context.Background(), "tag-1", 10); !errors.Is(err, util.ErrHistoryUnavailable) {
		t.Fatalf("err = %v", err)
	}
}

func TestAnswersAfterSubmitIgnored(t *testing.T) {
	svc, _, _ := newTestService(t, quiz.AdvanceOff, 1)
	ctx := context.Background()
	svc.Dispatch(ctx, "tag-1", answer(1, "falsch"))
	svc.Dispatch(ctx, "tag-1", quiz.Action{Kind: quiz.ActionSubmit})

	page, err := svc.Dispatch(ctx, "tag-1", answer(1, "richtig"))
	if err != nil {
		t.Fatal(err)
	}
	if page.Results.Score != 0 || page.Question.Answer != "falsch" {
		t.Fatalf("answer changed after submit: %+v", page.Question)
	}
}

func TestReloadDropsSessions(t *testing.T) {
	qs := newStubQuestions(3)
	sched := &fakeScheduler{}
	store := repository.NewMemoryProgressStore()
	svc := NewQuizService(qs, store, nil, sched, testPolicy(quiz.AdvanceAlways))
	ctx := context.Background()

	page, _ := svc.Dispatch(ctx, "tag-1", answer(1, "richtig"))
	svc.Reload(ctx)

	if qs.invalidated != 1 {
		t.Fatalf("invalidated = %d", qs.invalidated)
	}
	if len(sched.cancelled) != 1 || sched.cancelled[0] != page.SessionID {
		t.Fatalf("cancelled = %v", sched.cancelled)
	}
	resumed, _ := svc.Open(ctx, "tag-1")
	if resumed.Progress.Answered != 1 {
		t.Fatalf("progress lost on reload: %+v", resumed.Progress)
	}
}

func TestUpdatePolicyAllMode(t *testing.T) {
	svc, _, _ := newTestService(t, quiz.AdvanceOff, 3)
	ctx := context.Background()
	svc.Open(ctx, "tag-1")

	p := svc.Policy()
	p.View.Mode = quiz.RenderAll
	svc.UpdatePolicy(p)

	page, err := svc.Dispatch(ctx, "tag-1", answer(3, "richtig"))
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Questions) != 3 || !page.Questions[2].Answered || !page.Controls.Submit {
		t.Fatalf("all-mode page = %+v", page)
	}
}
