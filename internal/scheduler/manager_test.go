package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/campus-attend-api/internal/models"
)

func TestManagerStartsSchedulerPerUser(t *testing.T) {
	checker := &recordingChecker{}
	m := NewManager(context.Background(), ManagerParams{
		Checker: checker,
		Config:  Config{Interval: time.Hour},
	})
	defer m.Stop()

	m.Observe("user-1", models.Position{Latitude: 1})
	m.Observe("user-1", models.Position{Latitude: 2})
	m.Observe("user-2", models.Position{Latitude: 3})

	assert.Equal(t, 2, m.ActiveUsers())
	waitFor(t, func() bool { return checker.checks() >= 2 })
}

func TestManagerReplaysLastPosition(t *testing.T) {
	checker := &recordingChecker{}
	m := NewManager(context.Background(), ManagerParams{
		Checker: checker,
		Config:  Config{Interval: 15 * time.Millisecond},
	})
	defer m.Stop()

	m.Observe("user-1", models.Position{Latitude: 5, Longitude: 6})
	waitFor(t, func() bool { return checker.checks() >= 3 })
	assert.Equal(t, models.Position{Latitude: 5, Longitude: 6}, checker.first())
}

func TestManagerStopIsTerminal(t *testing.T) {
	m := NewManager(context.Background(), ManagerParams{
		Checker: &recordingChecker{},
		Config:  Config{Interval: time.Hour},
	})
	m.Stop()

	m.Observe("user-1", models.Position{})
	assert.Zero(t, m.ActiveUsers())
}

func TestMemorySourceWithoutFix(t *testing.T) {
	src := &memorySource{}
	_, err := src.Current(context.Background())
	assert.Error(t, err)

	src.set(models.Position{Latitude: 7})
	pos, err := src.Current(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 7.0, pos.Latitude)
}
