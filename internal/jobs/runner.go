package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

var (
	// ErrUnsupportedExpression is returned for schedules other than the
	// interval descriptors understood by Runner.
	ErrUnsupportedExpression = errors.New("jobs: unsupported schedule expression")
	// ErrUnsupportedHandler is returned when a registered handler is not a func() error.
	ErrUnsupportedHandler = errors.New("jobs: handler must be func() error")
	// ErrRunnerStarted is returned when registering after Start.
	ErrRunnerStarted = errors.New("jobs: runner already started")
)

var descriptors = map[string]time.Duration{
	"@hourly":   time.Hour,
	"@daily":    24 * time.Hour,
	"@midnight": 24 * time.Hour,
	"@weekly":   7 * 24 * time.Hour,
}

// ParseInterval resolves an interval descriptor such as "@daily" or
// "@every 90m".
func ParseInterval(expression string) (time.Duration, error) {
	expr := strings.TrimSpace(expression)
	if interval, ok := descriptors[strings.ToLower(expr)]; ok {
		return interval, nil
	}
	if rest, ok := strings.CutPrefix(expr, "@every "); ok {
		interval, err := time.ParseDuration(strings.TrimSpace(rest))
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %w", ErrUnsupportedExpression, expression, err)
		}
		if interval <= 0 {
			return 0, fmt.Errorf("%w: %q: interval must be positive", ErrUnsupportedExpression, expression)
		}
		return interval, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedExpression, expression)
}

type job struct {
	name     string
	interval time.Duration
	run      func() error
}

// Runner executes registered cron handlers on fixed intervals until its
// context is cancelled. Register matches the go-command cron registrar
// signature so it can be handed to command registries directly.
type Runner struct {
	logger interfaces.Logger

	mu      sync.Mutex
	jobs    []job
	started bool
	wg      sync.WaitGroup
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for job outcomes.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner constructs an idle runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{logger: logging.NoOp()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds handler to the schedule described by cfg.Expression.
func (r *Runner) Register(cfg command.HandlerConfig, handler any) error {
	run, ok := handler.(func() error)
	if !ok {
		return fmt.Errorf("%w: got %T", ErrUnsupportedHandler, handler)
	}
	interval, err := ParseInterval(cfg.Expression)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return ErrRunnerStarted
	}
	r.jobs = append(r.jobs, job{
		name:     fmt.Sprintf("job-%d", len(r.jobs)+1),
		interval: interval,
		run:      run,
	})
	return nil
}

// Len reports how many jobs are registered.
func (r *Runner) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

// Start launches one goroutine per job. Jobs fire after their first full
// interval. Start returns immediately; use Wait to block until ctx ends.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true
	for _, j := range r.jobs {
		r.wg.Add(1)
		go r.loop(ctx, j)
	}
}

// Wait blocks until every job goroutine has returned.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) loop(ctx context.Context, j job) {
	defer r.wg.Done()
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	logger := logging.WithFields(r.logger, map[string]any{"job": j.name, "interval": j.interval.String()})
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			started := time.Now()
			if err := j.run(); err != nil {
				logger.Error("jobs.run.failed", "error", err)
				continue
			}
			logger.Debug("jobs.run.completed", "duration", time.Since(started).String())
		}
	}
}
