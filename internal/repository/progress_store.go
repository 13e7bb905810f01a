package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"vocab_quiz_backend/internal/quiz"
)

var ErrCorruptProgress = errors.New("corrupt progress record")

// ProgressStore 按题集 key 保存进行中的会话快照。Load 在没有记录时返回 nil, nil。
type ProgressStore interface {
	Save(ctx context.Context, setKey string, snap quiz.Snapshot) error
	Load(ctx context.Context, setKey string) (*quiz.Snapshot, error)
	Clear(ctx context.Context, setKey string) error
}

func encodeSnapshot(snap quiz.Snapshot) ([]byte, error) {
	return json.Marshal(snap)
}

func decodeSnapshot(data []byte) (*quiz.Snapshot, error) {
	var snap quiz.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptProgress, err)
	}
	return &snap, nil
}

// MemoryProgressStore 进程内存储，按序列化后的字节保存以隔离调用方的修改
type MemoryProgressStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemoryProgressStore() *MemoryProgressStore {
	return &MemoryProgressStore{records: make(map[string][]byte)}
}

func (s *MemoryProgressStore) Save(ctx context.Context, setKey string, snap quiz.Snapshot) error {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.records[setKey] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryProgressStore) Load(ctx context.Context, setKey string) (*quiz.Snapshot, error) {
	s.mu.RLock()
	data, ok := s.records[setKey]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return decodeSnapshot(data)
}

func (s *MemoryProgressStore) Clear(ctx context.Context, setKey string) error {
	s.mu.Lock()
	delete(s.records, setKey)
	s.mu.Unlock()
	return nil
}
