package odoo

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestRunOnce_RunsHookWithoutOdoo(t *testing.T) {
	s := NewSyncService(nil, NewClient("", "", "", ""), Config{}, zap.NewNop())

	called := 0
	s.AfterPull(func(ctx context.Context) error {
		called++
		return nil
	})

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if called != 1 {
		t.Errorf("Expected hook to run once, ran %d times", called)
	}
}

func TestRunOnce_ReturnsHookError(t *testing.T) {
	s := NewSyncService(nil, NewClient("", "", "", ""), Config{}, zap.NewNop())
	want := errors.New("config 1 failed")
	s.AfterPull(func(ctx context.Context) error { return want })

	if err := s.RunOnce(context.Background()); !errors.Is(err, want) {
		t.Errorf("Expected hook error, got %v", err)
	}
}
