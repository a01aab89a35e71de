package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-attend-api/internal/docstore"
	"github.com/noah-isme/campus-attend-api/internal/models"
	"github.com/noah-isme/campus-attend-api/internal/repository"
)

type fakeReminderCanceler struct {
	cancelled []string
}

func (f *fakeReminderCanceler) CancelRemindersForUser(userID string) {
	f.cancelled = append(f.cancelled, userID)
}

func newTimetableService() (*TimetableService, *fakeReminderCanceler) {
	reminders := &fakeReminderCanceler{}
	repo := repository.NewTimetableRepository(docstore.NewMemoryStore())
	return NewTimetableService(repo, reminders, nil, nil), reminders
}

func validSaveRequest() SaveTimetableRequest {
	return SaveTimetableRequest{
		Days: map[string][]SlotInput{
			"monday": {
				{Name: "Mathematics", Code: "MATH101", StartTime: "09:00", EndTime: "10:00"},
			},
		},
	}
}

func TestSaveTimetableAssignsSlotIDs(t *testing.T) {
	svc, reminders := newTimetableService()

	timetable, err := svc.Save(context.Background(), "user-1", validSaveRequest())
	require.NoError(t, err)
	require.Len(t, timetable[models.Monday], 1)
	assert.NotEmpty(t, timetable[models.Monday][0].ID)
	assert.Equal(t, []string{"user-1"}, reminders.cancelled)
}

func TestSaveTimetableRejectsBadClockTime(t *testing.T) {
	svc, _ := newTimetableService()

	req := validSaveRequest()
	req.Days["monday"][0].StartTime = "9am"
	_, err := svc.Save(context.Background(), "user-1", req)
	require.Error(t, err)
}

func TestSaveTimetableRejectsInvertedSlot(t *testing.T) {
	svc, _ := newTimetableService()

	req := validSaveRequest()
	req.Days["monday"][0].StartTime = "10:00"
	req.Days["monday"][0].EndTime = "09:00"
	_, err := svc.Save(context.Background(), "user-1", req)
	require.Error(t, err)
}

func TestSaveTimetableRejectsUnknownWeekday(t *testing.T) {
	svc, _ := newTimetableService()

	req := SaveTimetableRequest{
		Days: map[string][]SlotInput{
			"funday": {
				{Name: "Mathematics", StartTime: "09:00", EndTime: "10:00"},
			},
		},
	}
	_, err := svc.Save(context.Background(), "user-1", req)
	require.Error(t, err)
}

func TestSaveTimetableRejectsBadHolidayDate(t *testing.T) {
	svc, _ := newTimetableService()

	req := validSaveRequest()
	req.HolidayDates = []string{"10-03-2025"}
	_, err := svc.Save(context.Background(), "user-1", req)
	require.Error(t, err)
}

func TestSaveReplacesPreviousTimetable(t *testing.T) {
	svc, _ := newTimetableService()
	ctx := context.Background()

	_, err := svc.Save(ctx, "user-1", validSaveRequest())
	require.NoError(t, err)

	replacement := SaveTimetableRequest{
		Days: map[string][]SlotInput{
			"tuesday": {
				{Name: "Physics", Code: "PHY101", StartTime: "11:00", EndTime: "12:00"},
			},
		},
	}
	_, err = svc.Save(ctx, "user-1", replacement)
	require.NoError(t, err)

	timetable, _, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, timetable[models.Monday])
	assert.Len(t, timetable[models.Tuesday], 1)
}

func TestTodayListsClasses(t *testing.T) {
	svc, _ := newTimetableService()
	ctx := context.Background()

	_, err := svc.Save(ctx, "user-1", validSaveRequest())
	require.NoError(t, err)

	monday := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	schedule, err := svc.Today(ctx, "user-1", monday)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", schedule.Date)
	assert.Equal(t, models.Monday, schedule.Weekday)
	assert.False(t, schedule.IsHoliday)
	assert.Len(t, schedule.Classes, 1)
}

func TestTodayOnHolidayIsEmpty(t *testing.T) {
	svc, _ := newTimetableService()
	ctx := context.Background()

	req := validSaveRequest()
	req.HolidayDates = []string{"2025-03-10"}
	_, err := svc.Save(ctx, "user-1", req)
	require.NoError(t, err)

	monday := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	schedule, err := svc.Today(ctx, "user-1", monday)
	require.NoError(t, err)
	assert.True(t, schedule.IsHoliday)
	assert.Empty(t, schedule.Classes)
}
