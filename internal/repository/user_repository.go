package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/campus-attend-api/internal/docstore"
	"github.com/noah-isme/campus-attend-api/internal/models"
)

// UserRepository manages the per-user document: campus geofence, presence
// snapshot, notification settings and profile. All writes merge so the
// document's other fields (timetable, holidays) are never clobbered.
type UserRepository struct {
	store docstore.Store
}

// NewUserRepository constructs the repository.
func NewUserRepository(store docstore.Store) *UserRepository {
	return &UserRepository{store: store}
}

// CampusLocation returns the user's geofence, or nil when none is configured.
func (r *UserRepository) CampusLocation(ctx context.Context, userID string) (*models.CampusLocation, error) {
	var doc models.UserDocument
	if err := r.store.Get(ctx, usersCollection, userID, &doc); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load campus location for %s: %w", userID, err)
	}
	return doc.CampusLocation, nil
}

// SaveCampusLocation sets the user's geofence.
func (r *UserRepository) SaveCampusLocation(ctx context.Context, userID string, loc models.CampusLocation) error {
	payload := map[string]interface{}{
		"campusLocation": loc,
		"updatedAt":      time.Now().UTC(),
	}
	if err := r.store.Set(ctx, usersCollection, userID, payload, true); err != nil {
		return fmt.Errorf("save campus location for %s: %w", userID, err)
	}
	return nil
}

// SavePresence overwrites the user's presence snapshot. One snapshot per
// user, not an append-only log.
func (r *UserRepository) SavePresence(ctx context.Context, userID string, presence models.PresenceStatus) error {
	payload := map[string]interface{}{
		"isOnCampus":        presence.IsOnCampus,
		"lastLocationCheck": presence.LastLocationCheck,
	}
	if err := r.store.Set(ctx, usersCollection, userID, payload, true); err != nil {
		return fmt.Errorf("save presence for %s: %w", userID, err)
	}
	return nil
}

// Presence returns the latest presence snapshot, or nil when the user has
// never been sampled.
func (r *UserRepository) Presence(ctx context.Context, userID string) (*models.PresenceStatus, error) {
	var doc models.UserDocument
	if err := r.store.Get(ctx, usersCollection, userID, &doc); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load presence for %s: %w", userID, err)
	}
	if doc.IsOnCampus == nil || doc.LastLocationCheck == nil {
		return nil, nil
	}
	return &models.PresenceStatus{IsOnCampus: *doc.IsOnCampus, LastLocationCheck: *doc.LastLocationCheck}, nil
}

// NotificationSettings returns the user's preferences, falling back to the
// defaults when never saved.
func (r *UserRepository) NotificationSettings(ctx context.Context, userID string) (models.NotificationSettings, error) {
	var doc models.UserDocument
	if err := r.store.Get(ctx, usersCollection, userID, &doc); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return models.DefaultNotificationSettings(), nil
		}
		return models.NotificationSettings{}, fmt.Errorf("load notification settings for %s: %w", userID, err)
	}
	if doc.NotificationSettings == nil {
		return models.DefaultNotificationSettings(), nil
	}
	return *doc.NotificationSettings, nil
}

// SaveNotificationSettings stores the user's preferences.
func (r *UserRepository) SaveNotificationSettings(ctx context.Context, userID string, settings models.NotificationSettings) error {
	payload := map[string]interface{}{
		"notificationSettings": settings,
		"updatedAt":            time.Now().UTC(),
	}
	if err := r.store.Set(ctx, usersCollection, userID, payload, true); err != nil {
		return fmt.Errorf("save notification settings for %s: %w", userID, err)
	}
	return nil
}

// Profile returns the user's editable profile fields. A user that has never
// saved a profile gets the zero value, not an error.
func (r *UserRepository) Profile(ctx context.Context, userID string) (models.UserProfile, error) {
	var doc models.UserDocument
	if err := r.store.Get(ctx, usersCollection, userID, &doc); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return models.UserProfile{}, nil
		}
		return models.UserProfile{}, fmt.Errorf("load profile for %s: %w", userID, err)
	}
	return doc.UserProfile, nil
}

// SaveProfile merges editable profile fields into the user document.
func (r *UserRepository) SaveProfile(ctx context.Context, userID string, profile models.UserProfile) error {
	payload := map[string]interface{}{
		"displayName": profile.DisplayName,
		"email":       profile.Email,
		"course":      profile.Course,
		"semester":    profile.Semester,
		"updatedAt":   time.Now().UTC(),
	}
	if err := r.store.Set(ctx, usersCollection, userID, payload, true); err != nil {
		return fmt.Errorf("save profile for %s: %w", userID, err)
	}
	return nil
}
