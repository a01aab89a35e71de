package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/noah-isme/campus-attend-api/internal/docstore"
	"github.com/noah-isme/campus-attend-api/internal/models"
)

const notificationsCollection = "notifications"

// NotificationRepository persists delivered notification events.
type NotificationRepository struct {
	store docstore.Store
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(store docstore.Store) *NotificationRepository {
	return &NotificationRepository{store: store}
}

// Save stores one notification event.
func (r *NotificationRepository) Save(ctx context.Context, n models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if err := r.store.Set(ctx, notificationsCollection, n.ID, n, false); err != nil {
		return fmt.Errorf("save notification %s: %w", n.ID, err)
	}
	return nil
}

// ListByUser returns the user's notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	docs, err := r.store.QueryByField(ctx, notificationsCollection, "userId", userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications for %s: %w", userID, err)
	}
	items := make([]models.Notification, 0, len(docs))
	for _, doc := range docs {
		var n models.Notification
		if err := doc.Decode(&n); err != nil {
			return nil, fmt.Errorf("decode notification %s: %w", doc.ID, err)
		}
		items = append(items, n)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Timestamp.After(items[j].Timestamp) })
	return items, nil
}
