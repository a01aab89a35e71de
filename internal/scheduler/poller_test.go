package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-attend-api/internal/models"
)

type scriptedSource struct {
	mu       sync.Mutex
	pos      models.Position
	err      error
	reads    int
	watchFn  func(models.Position)
	watchErr error
	stops    int
}

func (s *scriptedSource) Current(ctx context.Context) (models.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	return s.pos, s.err
}

func (s *scriptedSource) Watch(ctx context.Context, fn func(models.Position)) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watchErr != nil {
		return nil, s.watchErr
	}
	s.watchFn = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.stops++
	}, nil
}

func (s *scriptedSource) readCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

func (s *scriptedSource) push(pos models.Position) {
	s.mu.Lock()
	fn := s.watchFn
	s.mu.Unlock()
	if fn != nil {
		fn(pos)
	}
}

type recordingChecker struct {
	mu        sync.Mutex
	positions []models.Position
	err       error
}

func (c *recordingChecker) Check(ctx context.Context, userID string, pos models.Position, now time.Time) (*bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.positions = append(c.positions, pos)
	onCampus := true
	return &onCampus, c.err
}

func (c *recordingChecker) checks() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.positions)
}

func (c *recordingChecker) first() models.Position {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.positions[0]
}

type countingObserver struct {
	mu     sync.Mutex
	errors int
}

func (o *countingObserver) ObserveLocationError() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errors++
}

func (o *countingObserver) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.errors
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestStartRunsImmediateCheck(t *testing.T) {
	source := &scriptedSource{pos: models.Position{Latitude: 1, Longitude: 2}, watchErr: ErrWatchUnsupported}
	checker := &recordingChecker{}
	s := New(Params{UserID: "user-1", Source: source, Checker: checker, Config: Config{Interval: time.Hour}})

	s.Start(context.Background())
	defer s.Stop()

	waitFor(t, func() bool { return checker.checks() >= 1 })
	assert.Equal(t, models.Position{Latitude: 1, Longitude: 2}, checker.first())
}

func TestTickerCadence(t *testing.T) {
	source := &scriptedSource{watchErr: ErrWatchUnsupported}
	checker := &recordingChecker{}
	s := New(Params{UserID: "user-1", Source: source, Checker: checker, Config: Config{Interval: 20 * time.Millisecond}})

	s.Start(context.Background())
	defer s.Stop()

	waitFor(t, func() bool { return checker.checks() >= 3 })
}

func TestWatchPushTriggersCheck(t *testing.T) {
	source := &scriptedSource{}
	checker := &recordingChecker{}
	s := New(Params{UserID: "user-1", Source: source, Checker: checker, Config: Config{Interval: time.Hour}})

	s.Start(context.Background())
	defer s.Stop()

	waitFor(t, func() bool { return checker.checks() >= 1 }) // immediate pass
	source.push(models.Position{Latitude: 9, Longitude: 9})
	waitFor(t, func() bool { return checker.checks() >= 2 })
}

func TestLocationErrorsKeepLoopAlive(t *testing.T) {
	source := &scriptedSource{err: errors.New("gps denied"), watchErr: ErrWatchUnsupported}
	checker := &recordingChecker{}
	metrics := &countingObserver{}
	s := New(Params{UserID: "user-1", Source: source, Checker: checker, Metrics: metrics, Config: Config{Interval: 15 * time.Millisecond}})

	s.Start(context.Background())
	defer s.Stop()

	waitFor(t, func() bool { return metrics.count() >= 2 })
	assert.Zero(t, checker.checks())
	assert.GreaterOrEqual(t, source.readCount(), 2)
}

func TestStopHaltsLoopAndWatch(t *testing.T) {
	source := &scriptedSource{}
	checker := &recordingChecker{}
	s := New(Params{UserID: "user-1", Source: source, Checker: checker, Config: Config{Interval: 10 * time.Millisecond}})

	s.Start(context.Background())
	waitFor(t, func() bool { return checker.checks() >= 1 })
	s.Stop()

	source.mu.Lock()
	stops := source.stops
	source.mu.Unlock()
	assert.Equal(t, 1, stops)

	after := checker.checks()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, after, checker.checks())

	// Stop twice is safe.
	s.Stop()
}

func TestDetectNow(t *testing.T) {
	source := &scriptedSource{pos: models.Position{Latitude: 5}, watchErr: ErrWatchUnsupported}
	checker := &recordingChecker{}
	s := New(Params{UserID: "user-1", Source: source, Checker: checker})

	onCampus, err := s.DetectNow(context.Background())
	require.NoError(t, err)
	require.NotNil(t, onCampus)
	assert.True(t, *onCampus)
	assert.Equal(t, 1, checker.checks())
}

func TestDetectNowPropagatesSourceError(t *testing.T) {
	source := &scriptedSource{err: errors.New("gps denied")}
	metrics := &countingObserver{}
	s := New(Params{UserID: "user-1", Source: source, Checker: &recordingChecker{}, Metrics: metrics})

	_, err := s.DetectNow(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, metrics.count())
}

func TestTickerSourceWatchUnsupported(t *testing.T) {
	src := TickerSource{Fn: func(ctx context.Context) (models.Position, error) {
		return models.Position{Latitude: 3}, nil
	}}
	pos, err := src.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3.0, pos.Latitude)

	_, err = src.Watch(context.Background(), nil)
	assert.ErrorIs(t, err, ErrWatchUnsupported)
}
