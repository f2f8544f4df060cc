package jobs_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-portfolio/internal/jobs"
)

func TestParseInterval(t *testing.T) {
	cases := map[string]time.Duration{
		"@hourly":     time.Hour,
		"@daily":      24 * time.Hour,
		"@WEEKLY":     7 * 24 * time.Hour,
		"@every 90m":  90 * time.Minute,
		" @every 5s ": 5 * time.Second,
	}
	for expr, want := range cases {
		got, err := jobs.ParseInterval(expr)
		if err != nil {
			t.Fatalf("ParseInterval(%q): %v", expr, err)
		}
		if got != want {
			t.Fatalf("ParseInterval(%q) = %s, want %s", expr, got, want)
		}
	}

	for _, expr := range []string{"", "0 3 * * *", "@every nope", "@every -1s"} {
		if _, err := jobs.ParseInterval(expr); !errors.Is(err, jobs.ErrUnsupportedExpression) {
			t.Fatalf("ParseInterval(%q) error = %v, want ErrUnsupportedExpression", expr, err)
		}
	}
}

func TestRunnerRegisterValidation(t *testing.T) {
	runner := jobs.NewRunner()

	if err := runner.Register(command.HandlerConfig{Expression: "@daily"}, func() {}); !errors.Is(err, jobs.ErrUnsupportedHandler) {
		t.Fatalf("expected ErrUnsupportedHandler, got %v", err)
	}
	if err := runner.Register(command.HandlerConfig{Expression: "0 3 * * *"}, func() error { return nil }); !errors.Is(err, jobs.ErrUnsupportedExpression) {
		t.Fatalf("expected ErrUnsupportedExpression, got %v", err)
	}
	if runner.Len() != 0 {
		t.Fatalf("expected no jobs, got %d", runner.Len())
	}
}

func TestRunnerRunsJobsUntilCancelled(t *testing.T) {
	runner := jobs.NewRunner()

	var calls atomic.Int32
	var failures atomic.Int32
	if err := runner.Register(command.HandlerConfig{Expression: "@every 5ms"}, func() error {
		calls.Add(1)
		return nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := runner.Register(command.HandlerConfig{Expression: "@every 5ms"}, func() error {
		failures.Add(1)
		return errors.New("boom")
	}); err != nil {
		t.Fatalf("register failing job: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	runner.Start(ctx)

	deadline := time.After(2 * time.Second)
	for calls.Load() < 2 || failures.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("jobs did not run: calls=%d failures=%d", calls.Load(), failures.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	runner.Wait()

	if err := runner.Register(command.HandlerConfig{Expression: "@daily"}, func() error { return nil }); !errors.Is(err, jobs.ErrRunnerStarted) {
		t.Fatalf("expected ErrRunnerStarted, got %v", err)
	}
}
