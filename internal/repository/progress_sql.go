package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"vocab_quiz_backend/internal/quiz"
)

// SQLProgressStore database/sql 实现，支持 sqlite 与 postgres
type SQLProgressStore struct {
	db       *sql.DB
	postgres bool
}

func NewSQLProgressStore(db *sql.DB, postgres bool) *SQLProgressStore {
	return &SQLProgressStore{db: db, postgres: postgres}
}

// rebind 把 ? 占位符改写为 postgres 的 $n
func (s *SQLProgressStore) rebind(q string) string {
	if !s.postgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLProgressStore) Save(ctx context.Context, setKey string, snap quiz.Snapshot) error {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.rebind(`
INSERT INTO quiz_progress (set_key, payload, saved_at) VALUES (?, ?, ?)
ON CONFLICT (set_key) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`),
		setKey, string(data), snap.SavedAt.UnixMilli())
	return err
}

func (s *SQLProgressStore) Load(ctx context.Context, setKey string) (*quiz.Snapshot, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT payload FROM quiz_progress WHERE set_key = ?`), setKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeSnapshot([]byte(payload))
}

func (s *SQLProgressStore) Clear(ctx context.Context, setKey string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM quiz_progress WHERE set_key = ?`), setKey)
	return err
}
