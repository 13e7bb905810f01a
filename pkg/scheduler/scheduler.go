package scheduler

import (
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"

	"vocab_quiz_backend/pkg/logger"
)

// Scheduler 延迟任务调度。任务按 owner 分组，Cancel 丢弃该 owner 下尚未触发的任务。
type Scheduler interface {
	After(owner string, d time.Duration, fn func())
	Cancel(owner string)
	Stop()
}

type TimerScheduler struct {
	mu      sync.Mutex
	seq     uint64
	tasks   map[string]map[uint64]*time.Timer
	stopped bool
}

func New() *TimerScheduler {
	return &TimerScheduler{tasks: make(map[string]map[uint64]*time.Timer)}
}

func (s *TimerScheduler) After(owner string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	s.seq++
	id := s.seq
	group, ok := s.tasks[owner]
	if !ok {
		group = make(map[uint64]*time.Timer)
		s.tasks[owner] = group
	}
	group[id] = time.AfterFunc(d, func() {
		// 已被取消的任务不再执行
		if !s.take(owner, id) {
			return
		}
		run(owner, fn)
	})
}

// run 任务 panic 只记录日志，不影响进程和其他任务
func run(owner string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("Scheduled task panic",
				zap.String("owner", owner),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
		}
	}()
	fn()
}

func (s *TimerScheduler) take(owner string, id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	group, ok := s.tasks[owner]
	if !ok {
		return false
	}
	if _, ok := group[id]; !ok {
		return false
	}
	delete(group, id)
	if len(group) == 0 {
		delete(s.tasks, owner)
	}
	return true
}

func (s *TimerScheduler) Cancel(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks[owner] {
		t.Stop()
	}
	delete(s.tasks, owner)
}

// Pending 返回 owner 下尚未触发的任务数
func (s *TimerScheduler) Pending(owner string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks[owner])
}

// Stop 取消全部任务，之后的 After 调用被忽略
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for owner, group := range s.tasks {
		for _, t := range group {
			t.Stop()
		}
		delete(s.tasks, owner)
	}
}
