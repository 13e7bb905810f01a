package configwatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"vocab_quiz_backend/internal/config"
	"vocab_quiz_backend/internal/quiz"
)

func TestWatchConfigReloads(t *testing.T) {
	Debounce = 50 * time.Millisecond
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "data:\n  local_path: " + filepath.Join(dir, "data") + "\n"
	if err := os.WriteFile(path, []byte(data+"quiz:\n  render_mode: single\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reloaded := make(chan *config.Config, 1)
	done := make(chan error, 1)
	go func() {
		done <- WatchConfig(ctx, dir, func(cfg *config.Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// 等待监听建立后再写入
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte(data+"quiz:\n  render_mode: all\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Quiz.RenderMode != quiz.RenderAll {
			t.Fatalf("render mode = %s", cfg.Quiz.RenderMode)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

func TestWatchConfigMissingDir(t *testing.T) {
	err := WatchConfig(context.Background(), filepath.Join(t.TempDir(), "missing"), func(*config.Config) {})
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
