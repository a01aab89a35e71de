package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-attend-api/internal/models"
)

type fakeAttendanceLister struct {
	records []models.AttendanceRecord
	err     error
	calls   int
}

func (f *fakeAttendanceLister) ListByUser(ctx context.Context, userID string) ([]models.AttendanceRecord, error) {
	f.calls++
	return f.records, f.err
}

func record(classID, className, date string, status models.AttendanceStatus) models.AttendanceRecord {
	return models.AttendanceRecord{
		ID:        "user-1_" + classID + "_" + date,
		UserID:    "user-1",
		ClassID:   classID,
		ClassName: className,
		Date:      date,
		Status:    status,
	}
}

func newStatsService(lister *fakeAttendanceLister) *StatsService {
	svc := NewStatsService(StatsServiceParams{Attendance: lister})
	svc.now = func() time.Time { return time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC) } // a Friday
	return svc
}

func TestDashboardEmptyHistory(t *testing.T) {
	svc := newStatsService(&fakeAttendanceLister{})

	stats, cached, err := svc.Dashboard(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Zero(t, stats.Overall.Percentage)
	assert.Zero(t, stats.Overall.TotalDays)
	assert.Equal(t, 75.0, stats.Overall.RequiredPercentage)
	assert.Empty(t, stats.Subjects)
	assert.Len(t, stats.Weekly, 5)
	assert.Len(t, stats.Monthly, 4)
}

func TestDashboardOverallPercentage(t *testing.T) {
	lister := &fakeAttendanceLister{records: []models.AttendanceRecord{
		record("MATH101", "Mathematics", "2025-03-10", models.AttendanceStatusPresent),
		record("MATH101", "Mathematics", "2025-03-11", models.AttendanceStatusAbsent),
		record("MATH101", "Mathematics", "2025-03-12", models.AttendanceStatusPresent),
		record("MATH101", "Mathematics", "2025-03-13", models.AttendanceStatusPresent),
	}}
	svc := newStatsService(lister)

	stats, _, err := svc.Dashboard(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 75.0, stats.Overall.Percentage)
	assert.Equal(t, 3, stats.Overall.DaysPresent)
	assert.Equal(t, 4, stats.Overall.TotalDays)
}

func TestDashboardStatusSplit(t *testing.T) {
	lister := &fakeAttendanceLister{records: []models.AttendanceRecord{
		record("MATH101", "Mathematics", "2025-03-10", models.AttendanceStatusPresent),
		record("MATH101", "Mathematics", "2025-03-11", models.AttendanceStatusAbsent),
		record("MATH101", "Mathematics", "2025-03-12", models.AttendanceStatusHoliday),
		record("PHY101", "Physics", "2025-03-12", models.AttendanceStatusPending),
		record("PHY101", "Physics", "2025-03-13", models.AttendanceStatusPresent),
	}}
	svc := newStatsService(lister)

	stats, _, err := svc.Dashboard(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSplit{Present: 2, Absent: 1, Holiday: 1, Pending: 1}, stats.Split)
}

func TestDashboardSubjectBreakdown(t *testing.T) {
	lister := &fakeAttendanceLister{records: []models.AttendanceRecord{
		record("MATH101", "Mathematics", "2025-03-10", models.AttendanceStatusPresent),
		record("MATH101", "Mathematics", "2025-03-11", models.AttendanceStatusAbsent),
		record("PHY101", "Physics", "2025-03-10", models.AttendanceStatusPresent),
	}}
	svc := newStatsService(lister)

	stats, _, err := svc.Dashboard(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, stats.Subjects, 2)

	// Sorted by class name.
	math := stats.Subjects[0]
	assert.Equal(t, "MATH101", math.ClassID)
	assert.Equal(t, 2, math.ClassesConducted)
	assert.Equal(t, 1, math.ClassesAttended)
	assert.Equal(t, 50.0, math.Percentage)

	physics := stats.Subjects[1]
	assert.Equal(t, "PHY101", physics.ClassID)
	assert.Equal(t, 100.0, physics.Percentage)
}

func TestDashboardSubjectNameFallsBackToID(t *testing.T) {
	lister := &fakeAttendanceLister{records: []models.AttendanceRecord{
		record("CS202", "", "2025-03-10", models.AttendanceStatusPresent),
	}}
	svc := newStatsService(lister)

	stats, _, err := svc.Dashboard(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, stats.Subjects, 1)
	assert.Equal(t, "CS202", stats.Subjects[0].ClassName)
}

func TestDashboardWeeklyBuckets(t *testing.T) {
	lister := &fakeAttendanceLister{records: []models.AttendanceRecord{
		record("MATH101", "Mathematics", "2025-03-10", models.AttendanceStatusPresent), // Monday
		record("PHY101", "Physics", "2025-03-10", models.AttendanceStatusAbsent),       // Monday
		record("MATH101", "Mathematics", "2025-03-12", models.AttendanceStatusPresent), // Wednesday
		record("MATH101", "Mathematics", "2025-02-01", models.AttendanceStatusPresent), // outside window
	}}
	svc := newStatsService(lister)

	stats, _, err := svc.Dashboard(context.Background(), "user-1")
	require.NoError(t, err)

	monday := stats.Weekly[0]
	assert.Equal(t, "Mon", monday.Name)
	assert.Equal(t, 1, monday.Present)
	assert.Equal(t, 1, monday.Absent)
	assert.Equal(t, 2, monday.Total)

	wednesday := stats.Weekly[2]
	assert.Equal(t, 1, wednesday.Present)
	assert.Zero(t, stats.Weekly[4].Total, "stale record excluded from the week window")
}

func TestDashboardMonthlyBuckets(t *testing.T) {
	lister := &fakeAttendanceLister{records: []models.AttendanceRecord{
		record("MATH101", "Mathematics", "2025-03-13", models.AttendanceStatusPresent), // 1 day old → Week 1
		record("MATH101", "Mathematics", "2025-03-04", models.AttendanceStatusAbsent),  // 10 days old → Week 2
		record("MATH101", "Mathematics", "2025-02-20", models.AttendanceStatusPresent), // 22 days old → Week 4
	}}
	svc := newStatsService(lister)

	stats, _, err := svc.Dashboard(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Monthly[0].Present)
	assert.Equal(t, 1, stats.Monthly[1].Absent)
	assert.Equal(t, 1, stats.Monthly[3].Present)
	assert.Zero(t, stats.Monthly[2].Total)
}

func TestSubjectSummariesFeedLowAttendancePolicy(t *testing.T) {
	lister := &fakeAttendanceLister{records: []models.AttendanceRecord{
		record("MATH101", "Mathematics", "2025-03-10", models.AttendanceStatusAbsent),
		record("MATH101", "Mathematics", "2025-03-11", models.AttendanceStatusAbsent),
		record("MATH101", "Mathematics", "2025-03-12", models.AttendanceStatusPresent),
	}}
	svc := newStatsService(lister)

	summaries, err := svc.SubjectSummaries(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.InDelta(t, 33.33, summaries[0].Percentage, 0.01)
	assert.Less(t, summaries[0].Percentage, summaries[0].RequiredPercentage)
}

func TestDashboardHolidayCountsTowardTotal(t *testing.T) {
	lister := &fakeAttendanceLister{records: []models.AttendanceRecord{
		record("MATH101", "Mathematics", "2025-03-10", models.AttendanceStatusPresent),
		record("MATH101", "Mathematics", "2025-03-11", models.AttendanceStatusHoliday),
	}}
	svc := newStatsService(lister)

	stats, _, err := svc.Dashboard(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Overall.TotalDays)
	assert.Equal(t, 1, stats.Overall.DaysPresent)
	assert.Equal(t, 50.0, stats.Overall.Percentage)
}
