package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-attend-api/internal/models"
	"github.com/noah-isme/campus-attend-api/pkg/jobs"
)

type notificationSaver interface {
	Save(ctx context.Context, n models.Notification) error
}

// NotificationDispatcher decouples notification emission from the inference
// path. Events are queued and persisted by background workers; delivery to a
// device channel is out of scope, so a persisted + logged event is the
// trigger surface.
type NotificationDispatcher struct {
	queue  *jobs.Queue
	repo   notificationSaver
	logger *zap.Logger
}

// NewNotificationDispatcher builds the dispatcher and its worker queue.
func NewNotificationDispatcher(repo notificationSaver, logger *zap.Logger, workers, buffer int) *NotificationDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &NotificationDispatcher{repo: repo, logger: logger}
	d.queue = jobs.NewQueue("notifications", d.handle, jobs.QueueConfig{
		Workers:    workers,
		BufferSize: buffer,
		Logger:     logger,
	})
	return d
}

// Start launches the worker pool.
func (d *NotificationDispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop drains the workers.
func (d *NotificationDispatcher) Stop() {
	d.queue.Stop()
}

// Dispatch enqueues one notification event. Errors are logged, never
// returned; a lost notification must not fail an inference pass.
func (d *NotificationDispatcher) Dispatch(n models.Notification) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	err := d.queue.Enqueue(jobs.Job{ID: n.ID, Type: string(n.Type), Payload: n})
	if err != nil {
		d.logger.Sugar().Warnw("notification dropped", "type", n.Type, "user_id", n.UserID, "error", err)
	}
}

func (d *NotificationDispatcher) handle(ctx context.Context, job jobs.Job) error {
	n, ok := job.Payload.(models.Notification)
	if !ok {
		return fmt.Errorf("unexpected payload type for job %s", job.ID)
	}
	if err := d.repo.Save(ctx, n); err != nil {
		return err
	}
	d.logger.Sugar().Infow("notification emitted",
		"user_id", n.UserID, "type", n.Type, "subject", n.Subject, "message", n.Message)
	return nil
}
