package configwatcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"learnhub_backend/internal/config"
)

const baseConfig = `
jwt:
  secret: dev-secret
storage:
  type: minio
learning:
  quiz_attempt_limit: %d
`

func writeLimit(t *testing.T, dir string, limit int) {
	t.Helper()
	body := []byte(fmt.Sprintf(baseConfig, limit))
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), body, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestWatchConfigReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	writeLimit(t, dir, 3)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *config.Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- WatchConfig(ctx, dir, func(cfg *config.Config) { reloaded <- cfg })
	}()

	// give the watcher time to register the directory
	time.Sleep(200 * time.Millisecond)
	writeLimit(t, dir, 5)

	select {
	case cfg := <-reloaded:
		if cfg.Learning.QuizAttemptLimit != 5 {
			t.Fatalf("expected reloaded limit 5, got %d", cfg.Learning.QuizAttemptLimit)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("WatchConfig returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WatchConfig did not stop after cancel")
	}
}

func TestWatchConfigIgnoresInvalidFile(t *testing.T) {
	dir := t.TempDir()
	writeLimit(t, dir, 3)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *config.Config, 4)
	go WatchConfig(ctx, dir, func(cfg *config.Config) { reloaded <- cfg })

	time.Sleep(200 * time.Millisecond)
	writeLimit(t, dir, 0)

	select {
	case cfg := <-reloaded:
		t.Fatalf("invalid config should not be applied, got limit %d", cfg.Learning.QuizAttemptLimit)
	case <-time.After(2 * time.Second):
	}
}

func TestWatchConfigMissingDirectory(t *testing.T) {
	err := WatchConfig(context.Background(), filepath.Join(t.TempDir(), "absent"), func(*config.Config) {})
	if err == nil {
		t.Fatal("expected an error for a missing directory")
	}
}
