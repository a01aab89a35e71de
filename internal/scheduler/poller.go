// Package scheduler drives periodic attendance checks from a device
// location source.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-attend-api/internal/models"
)

// LocationSource supplies device positions. Current is a one-shot read;
// Watch pushes continuous updates until the returned stop function is
// called.
type LocationSource interface {
	Current(ctx context.Context) (models.Position, error)
	Watch(ctx context.Context, fn func(models.Position)) (stop func(), err error)
}

type checker interface {
	Check(ctx context.Context, userID string, pos models.Position, now time.Time) (*bool, error)
}

type errorObserver interface {
	ObserveLocationError()
}

// Config tunes the polling loop.
type Config struct {
	Interval time.Duration
}

// Scheduler runs the automated detection loop for one user: an immediate
// check on start, then one per interval, plus pushed positions from the
// source's watch channel when it supports one.
type Scheduler struct {
	userID  string
	source  LocationSource
	checker checker
	metrics errorObserver
	logger  *zap.Logger
	cfg     Config

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
	watch   func()
}

// Params groups constructor dependencies.
type Params struct {
	UserID  string
	Source  LocationSource
	Checker checker
	Metrics errorObserver
	Logger  *zap.Logger
	Config  Config
}

// New constructs a Scheduler.
func New(params Params) *Scheduler {
	cfg := params.Config
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		userID:  params.UserID,
		source:  params.Source,
		checker: params.Checker,
		metrics: params.Metrics,
		logger:  logger,
		cfg:     cfg,
	}
}

// Start launches the loop. Calling Start on a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.stopped = make(chan struct{})

	if stop, err := s.source.Watch(ctx, func(pos models.Position) {
		s.runCheck(ctx, pos)
	}); err == nil {
		s.watch = stop
	} else {
		s.logger.Sugar().Debugw("location watch unavailable, polling only",
			"user_id", s.userID, "error", err)
	}

	go s.loop(ctx)
}

// Stop halts the loop and waits for the in-flight pass to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	stopped := s.stopped
	watch := s.watch
	s.cancel = nil
	s.watch = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	if watch != nil {
		watch()
	}
	cancel()
	<-stopped
}

// DetectNow runs one immediate pass outside the timer cadence.
func (s *Scheduler) DetectNow(ctx context.Context) (*bool, error) {
	pos, err := s.source.Current(ctx)
	if err != nil {
		s.observeLocationError(err)
		return nil, err
	}
	return s.checker.Check(ctx, s.userID, pos, time.Now().UTC())
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.stopped)

	s.tick(ctx)
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	pos, err := s.source.Current(ctx)
	if err != nil {
		s.observeLocationError(err)
		return
	}
	s.runCheck(ctx, pos)
}

func (s *Scheduler) runCheck(ctx context.Context, pos models.Position) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.checker.Check(ctx, s.userID, pos, time.Now().UTC()); err != nil {
		s.logger.Sugar().Errorw("scheduled check failed", "user_id", s.userID, "error", err)
	}
}

// observeLocationError logs and counts a failed position read. The loop
// keeps running; a denied or flaky location source must never kill it.
func (s *Scheduler) observeLocationError(err error) {
	s.logger.Sugar().Warnw("location read failed", "user_id", s.userID, "error", err)
	if s.metrics != nil {
		s.metrics.ObserveLocationError()
	}
}

// ErrWatchUnsupported marks a source that can only be polled.
var ErrWatchUnsupported = errors.New("location source does not support watch")

// TickerSource adapts a one-shot position function into a LocationSource
// with no push channel.
type TickerSource struct {
	Fn func(ctx context.Context) (models.Position, error)
}

// Current reads one position.
func (t TickerSource) Current(ctx context.Context) (models.Position, error) {
	return t.Fn(ctx)
}

// Watch is unsupported; the scheduler falls back to polling.
func (t TickerSource) Watch(ctx context.Context, fn func(models.Position)) (func(), error) {
	return nil, ErrWatchUnsupported
}
