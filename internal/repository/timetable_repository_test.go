package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-attend-api/internal/docstore"
	"github.com/noah-isme/campus-attend-api/internal/models"
)

func TestTimetableLoadMissingUserYieldsEmpty(t *testing.T) {
	repo := NewTimetableRepository(docstore.NewMemoryStore())

	tt, holidays, err := repo.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Len(t, tt, 7)
	for _, day := range models.Weekdays {
		assert.Empty(t, tt[day])
	}
	assert.Empty(t, holidays.Weekdays)
	assert.Empty(t, holidays.Dates)
}

func TestTimetableSaveRoundTrip(t *testing.T) {
	repo := NewTimetableRepository(docstore.NewMemoryStore())
	ctx := context.Background()

	tt := models.EmptyTimetable()
	tt[models.Monday] = []models.ClassSlot{
		{ID: "slot-1", Name: "Mathematics", Code: "MATH101", StartTime: "09:00", EndTime: "10:00"},
	}
	holidays := models.HolidaySet{Weekdays: []models.Weekday{models.Sunday}, Dates: []string{"2025-03-21"}}

	require.NoError(t, repo.Save(ctx, "user-1", tt, holidays))

	got, gotHolidays, err := repo.Load(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got[models.Monday], 1)
	assert.Equal(t, "MATH101", got[models.Monday][0].Code)
	assert.Equal(t, []models.Weekday{models.Sunday}, gotHolidays.Weekdays)
	assert.Equal(t, []string{"2025-03-21"}, gotHolidays.Dates)
}

func TestTimetableSaveDoesNotClobberSiblingFields(t *testing.T) {
	store := docstore.NewMemoryStore()
	users := NewUserRepository(store)
	repo := NewTimetableRepository(store)
	ctx := context.Background()

	campus := models.CampusLocation{Name: "Main Campus", Latitude: 51.5, Longitude: -0.12, RadiusMeters: 150}
	require.NoError(t, users.SaveCampusLocation(ctx, "user-1", campus))

	require.NoError(t, repo.Save(ctx, "user-1", models.EmptyTimetable(), models.HolidaySet{}))

	loc, err := users.CampusLocation(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, "Main Campus", loc.Name)
}

func TestTimetableLoadNormalizesPartialDocument(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "users", "user-1", map[string]interface{}{
		"timetable": map[string]interface{}{
			"friday": []map[string]string{{"id": "s1", "name": "Physics", "code": "PHY101", "startTime": "10:00", "endTime": "11:00"}},
		},
	}, false))

	repo := NewTimetableRepository(store)
	tt, _, err := repo.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, tt, 7)
	assert.Len(t, tt[models.Friday], 1)
	assert.Empty(t, tt[models.Tuesday])
}
