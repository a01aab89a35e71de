package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-attend-api/internal/docstore"
	"github.com/noah-isme/campus-attend-api/internal/models"
)

func TestUserCampusLocationNilWhenMissing(t *testing.T) {
	repo := NewUserRepository(docstore.NewMemoryStore())

	loc, err := repo.CampusLocation(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, loc)
}

func TestUserCampusLocationRoundTrip(t *testing.T) {
	repo := NewUserRepository(docstore.NewMemoryStore())
	ctx := context.Background()

	campus := models.CampusLocation{Name: "Main Campus", Latitude: 51.5074, Longitude: -0.1278, RadiusMeters: 200}
	require.NoError(t, repo.SaveCampusLocation(ctx, "user-1", campus))

	got, err := repo.CampusLocation(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Main Campus", got.Name)
	assert.Equal(t, 200.0, got.RadiusMeters)
}

func TestUserPresenceNilUntilSampled(t *testing.T) {
	repo := NewUserRepository(docstore.NewMemoryStore())
	ctx := context.Background()

	presence, err := repo.Presence(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, presence)

	// A user with a saved campus but no check yet still has no presence.
	require.NoError(t, repo.SaveCampusLocation(ctx, "user-1", models.CampusLocation{Latitude: 1, Longitude: 2}))

	presence, err = repo.Presence(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, presence)
}

func TestUserPresenceOverwrites(t *testing.T) {
	repo := NewUserRepository(docstore.NewMemoryStore())
	ctx := context.Background()

	first := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	second := first.Add(5 * time.Minute)

	require.NoError(t, repo.SavePresence(ctx, "user-1", models.PresenceStatus{IsOnCampus: true, LastLocationCheck: first}))
	require.NoError(t, repo.SavePresence(ctx, "user-1", models.PresenceStatus{IsOnCampus: false, LastLocationCheck: second}))

	got, err := repo.Presence(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.IsOnCampus)
	assert.True(t, got.LastLocationCheck.Equal(second))
}

func TestUserNotificationSettingsDefaults(t *testing.T) {
	repo := NewUserRepository(docstore.NewMemoryStore())
	ctx := context.Background()

	// Missing document and existing document without saved preferences both
	// fall back to the defaults.
	settings, err := repo.NotificationSettings(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultNotificationSettings(), settings)

	require.NoError(t, repo.SaveCampusLocation(ctx, "user-1", models.CampusLocation{Latitude: 1, Longitude: 2}))

	settings, err = repo.NotificationSettings(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultNotificationSettings(), settings)
}

func TestUserNotificationSettingsRoundTrip(t *testing.T) {
	repo := NewUserRepository(docstore.NewMemoryStore())
	ctx := context.Background()

	saved := models.NotificationSettings{Enabled: true, ClassReminders: false, AttendanceWarnings: true, LowAttendanceThreshold: 60}
	require.NoError(t, repo.SaveNotificationSettings(ctx, "user-1", saved))

	got, err := repo.NotificationSettings(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, saved, got)
}

func TestUserSaveProfileMerges(t *testing.T) {
	repo := NewUserRepository(docstore.NewMemoryStore())
	ctx := context.Background()

	campus := models.CampusLocation{Name: "Main Campus", Latitude: 51.5, Longitude: -0.12}
	require.NoError(t, repo.SaveCampusLocation(ctx, "user-1", campus))

	profile := models.UserProfile{DisplayName: "Asha", Email: "asha@example.edu", Course: "CS", Semester: "4"}
	require.NoError(t, repo.SaveProfile(ctx, "user-1", profile))

	loc, err := repo.CampusLocation(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, "Main Campus", loc.Name)
}
