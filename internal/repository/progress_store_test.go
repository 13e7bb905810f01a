package repository

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"vocab_quiz_backend/internal/config"
	"vocab_quiz_backend/internal/quiz"
	"vocab_quiz_backend/pkg/database"
)

func sampleSnapshot() quiz.Snapshot {
	start := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	return quiz.Snapshot{
		SetKey:        "tag-1",
		QuestionOrder: []int{3, 1, 2},
		Answers:       map[int]string{3: "müde", 1: "froh"},
		CurrentIndex:  2,
		StartedAt:     start,
		SavedAt:       start.Add(time.Minute),
	}
}

func assertSameSnapshot(t *testing.T, got *quiz.Snapshot, want quiz.Snapshot) {
	t.Helper()
	if got == nil {
		t.Fatal("snapshot missing")
	}
	if !reflect.DeepEqual(got.QuestionOrder, want.QuestionOrder) ||
		!reflect.DeepEqual(got.Answers, want.Answers) ||
		got.CurrentIndex != want.CurrentIndex ||
		!got.StartedAt.Equal(want.StartedAt) ||
		got.Submitted != want.Submitted {
		t.Fatalf("snapshot = %+v, want %+v", *got, want)
	}
}

func exerciseStore(t *testing.T, store ProgressStore) {
	t.Helper()
	ctx := context.Background()

	if snap, err := store.Load(ctx, "tag-1"); err != nil || snap != nil {
		t.Fatalf("empty load = %+v, %v", snap, err)
	}

	want := sampleSnapshot()
	if err := store.Save(ctx, "tag-1", want); err != nil {
		t.Fatal(err)
	}
	got, err := store.Load(ctx, "tag-1")
	if err != nil {
		t.Fatal(err)
	}
	assertSameSnapshot(t, got, want)

	// 覆盖写入
	want.Answers[2] = "alt"
	want.CurrentIndex = 0
	if err := store.Save(ctx, "tag-1", want); err != nil {
		t.Fatal(err)
	}
	got, _ = store.Load(ctx, "tag-1")
	assertSameSnapshot(t, got, want)

	// 题集之间互不影响
	other := sampleSnapshot()
	other.SetKey = "tag-2"
	if err := store.Save(ctx, "tag-2", other); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(ctx, "tag-1"); err != nil {
		t.Fatal(err)
	}
	if snap, _ := store.Load(ctx, "tag-1"); snap != nil {
		t.Fatal("cleared snapshot still present")
	}
	if snap, _ := store.Load(ctx, "tag-2"); snap == nil {
		t.Fatal("clear removed another set")
	}
	if err := store.Clear(ctx, "tag-9"); err != nil {
		t.Fatalf("clearing absent set: %v", err)
	}
}

func TestMemoryProgressStore(t *testing.T) {
	exerciseStore(t, NewMemoryProgressStore())
}

func TestMemoryProgressStoreCorruptRecord(t *testing.T) {
	s := NewMemoryProgressStore()
	s.records["tag-1"] = []byte("{oops")
	if _, err := s.Load(context.Background(), "tag-1"); !errors.Is(err, ErrCorruptProgress) {
		t.Fatalf("err = %v", err)
	}
}

func TestSQLiteProgressStore(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "progress.db")
	db, err := database.OpenSQL(context.Background(), config.DriverSQLite, dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	exerciseStore(t, NewSQLProgressStore(db, false))
}

func TestRebind(t *testing.T) {
	s := &SQLProgressStore{postgres: true}
	if got := s.rebind("a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Fatalf("rebind = %q", got)
	}
	s.postgres = false
	if got := s.rebind("a = ?"); got != "a = ?" {
		t.Fatalf("rebind = %q", got)
	}
}
