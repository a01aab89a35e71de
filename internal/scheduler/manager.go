package scheduler

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-attend-api/internal/models"
	appErrors "github.com/noah-isme/campus-attend-api/pkg/errors"
)

// memorySource replays the last submitted position for a user. The server
// has no direct device channel, so periodic re-evaluation of the last fix
// is what catches classes that start after the device last reported.
type memorySource struct {
	mu  sync.Mutex
	pos *models.Position
}

func (s *memorySource) set(pos models.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos = &pos
}

func (s *memorySource) Current(ctx context.Context) (models.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos == nil {
		return models.Position{}, appErrors.Clone(appErrors.ErrLocationUnavailable, "no position reported yet")
	}
	return *s.pos, nil
}

func (s *memorySource) Watch(ctx context.Context, fn func(models.Position)) (func(), error) {
	return nil, ErrWatchUnsupported
}

// Manager runs one polling Scheduler per active user, fed by the positions
// their devices submit through the API.
type Manager struct {
	checker checker
	metrics errorObserver
	logger  *zap.Logger
	cfg     Config

	mu         sync.Mutex
	ctx        context.Context
	sources    map[string]*memorySource
	schedulers map[string]*Scheduler
	closed     bool
}

// ManagerParams groups constructor dependencies.
type ManagerParams struct {
	Checker checker
	Metrics errorObserver
	Logger  *zap.Logger
	Config  Config
}

// NewManager constructs a Manager. Schedulers spawned later inherit ctx.
func NewManager(ctx context.Context, params ManagerParams) *Manager {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		checker:    params.Checker,
		metrics:    params.Metrics,
		logger:     logger,
		cfg:        params.Config,
		ctx:        ctx,
		sources:    map[string]*memorySource{},
		schedulers: map[string]*Scheduler{},
	}
}

// Observe records a freshly submitted position and lazily starts the user's
// polling scheduler on first sight.
func (m *Manager) Observe(userID string, pos models.Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	source, ok := m.sources[userID]
	if !ok {
		source = &memorySource{}
		m.sources[userID] = source
	}
	source.set(pos)

	if _, running := m.schedulers[userID]; !running {
		s := New(Params{
			UserID:  userID,
			Source:  source,
			Checker: m.checker,
			Metrics: m.metrics,
			Logger:  m.logger,
			Config:  m.cfg,
		})
		m.schedulers[userID] = s
		s.Start(m.ctx)
		m.logger.Sugar().Infow("polling scheduler started", "user_id", userID)
	}
}

// ActiveUsers reports how many schedulers are running.
func (m *Manager) ActiveUsers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.schedulers)
}

// Stop halts every scheduler.
func (m *Manager) Stop() {
	m.mu.Lock()
	m.closed = true
	schedulers := make([]*Scheduler, 0, len(m.schedulers))
	for _, s := range m.schedulers {
		schedulers = append(schedulers, s)
	}
	m.schedulers = map[string]*Scheduler{}
	m.mu.Unlock()

	for _, s := range schedulers {
		s.Stop()
	}
}
