package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-attend-api/internal/docstore"
	"github.com/noah-isme/campus-attend-api/internal/models"
)

func automatedMark(status models.AttendanceStatus) models.AttendanceMark {
	return models.AttendanceMark{
		UserID:    "user-1",
		ClassID:   "CS202",
		ClassName: "Computer Science",
		ClassCode: "CS202",
		Date:      "2025-03-10",
		Status:    status,
	}
}

func TestAttendanceUpsertCreates(t *testing.T) {
	repo := NewAttendanceRepository(docstore.NewMemoryStore())

	rec, err := repo.Upsert(context.Background(), automatedMark(models.AttendanceStatusAbsent))
	require.NoError(t, err)
	assert.Equal(t, "user-1_CS202_2025-03-10", rec.ID)
	assert.Equal(t, models.AttendanceStatusAbsent, rec.Status)
	assert.False(t, rec.ManuallyRecorded)
}

func TestAttendanceUpsertIsIdempotent(t *testing.T) {
	repo := NewAttendanceRepository(docstore.NewMemoryStore())
	ctx := context.Background()

	first, err := repo.Upsert(ctx, automatedMark(models.AttendanceStatusPresent))
	require.NoError(t, err)
	second, err := repo.Upsert(ctx, automatedMark(models.AttendanceStatusPresent))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.AttendanceStatusPresent, second.Status)

	records, err := repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestAttendancePromotesAbsentToPresent(t *testing.T) {
	repo := NewAttendanceRepository(docstore.NewMemoryStore())
	ctx := context.Background()

	_, err := repo.Upsert(ctx, automatedMark(models.AttendanceStatusAbsent))
	require.NoError(t, err)

	rec, err := repo.Upsert(ctx, automatedMark(models.AttendanceStatusPresent))
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusPresent, rec.Status)
	assert.NotNil(t, rec.UpdatedAt)
}

func TestAttendancePromotePreservesUnchangedFields(t *testing.T) {
	repo := NewAttendanceRepository(docstore.NewMemoryStore())
	ctx := context.Background()

	created, err := repo.Upsert(ctx, automatedMark(models.AttendanceStatusAbsent))
	require.NoError(t, err)

	_, err = repo.Upsert(ctx, automatedMark(models.AttendanceStatusPresent))
	require.NoError(t, err)

	// A status change is a partial write; everything set at creation stays.
	stored, err := repo.Get(ctx, "user-1", "CS202", "2025-03-10")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, models.AttendanceStatusPresent, stored.Status)
	assert.Equal(t, "Computer Science", stored.ClassName)
	assert.Equal(t, "CS202", stored.ClassCode)
	assert.True(t, stored.Timestamp.Equal(created.Timestamp))
	assert.NotNil(t, stored.UpdatedAt)
}

func TestAttendanceNeverDowngradesAutomatically(t *testing.T) {
	repo := NewAttendanceRepository(docstore.NewMemoryStore())
	ctx := context.Background()

	_, err := repo.Upsert(ctx, automatedMark(models.AttendanceStatusPresent))
	require.NoError(t, err)

	rec, err := repo.Upsert(ctx, automatedMark(models.AttendanceStatusAbsent))
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusPresent, rec.Status)
}

func TestAttendanceManualAlwaysOverwrites(t *testing.T) {
	repo := NewAttendanceRepository(docstore.NewMemoryStore())
	ctx := context.Background()

	_, err := repo.Upsert(ctx, automatedMark(models.AttendanceStatusPresent))
	require.NoError(t, err)

	manual := automatedMark(models.AttendanceStatusHoliday)
	manual.Manual = true
	rec, err := repo.Upsert(ctx, manual)
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusHoliday, rec.Status)
	assert.True(t, rec.ManuallyRecorded)

	// A later automated pass must not downgrade the manual value.
	rec, err = repo.Upsert(ctx, automatedMark(models.AttendanceStatusAbsent))
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusHoliday, rec.Status)
}

func TestAttendanceConcurrentUpsertsSingleRecord(t *testing.T) {
	repo := NewAttendanceRepository(docstore.NewMemoryStore())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		status := models.AttendanceStatusAbsent
		if i%2 == 0 {
			status = models.AttendanceStatusPresent
		}
		go func(s models.AttendanceStatus) {
			defer wg.Done()
			_, err := repo.Upsert(ctx, automatedMark(s))
			assert.NoError(t, err)
		}(status)
	}
	wg.Wait()

	records, err := repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.AttendanceStatusPresent, records[0].Status)
}
