package repository

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/noah-isme/campus-attend-api/internal/docstore"
	"github.com/noah-isme/campus-attend-api/internal/models"
)

const attendanceCollection = "attendance"

const lockStripes = 64

// AttendanceRepository reads and writes per-(user, class, date) attendance
// outcomes. Upserts run under a striped per-key lock so two concurrent
// inference passes cannot interleave their read-modify-write on the same
// record.
type AttendanceRepository struct {
	store docstore.Store
	locks [lockStripes]sync.Mutex
	now   func() time.Time
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(store docstore.Store) *AttendanceRepository {
	return &AttendanceRepository{store: store, now: time.Now}
}

// ListByUser returns every attendance record for the user, unordered.
func (r *AttendanceRepository) ListByUser(ctx context.Context, userID string) ([]models.AttendanceRecord, error) {
	docs, err := r.store.QueryByField(ctx, attendanceCollection, "userId", userID)
	if err != nil {
		return nil, fmt.Errorf("list attendance for %s: %w", userID, err)
	}
	records := make([]models.AttendanceRecord, 0, len(docs))
	for _, doc := range docs {
		var rec models.AttendanceRecord
		if err := doc.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode attendance %s: %w", doc.ID, err)
		}
		if rec.ID == "" {
			rec.ID = doc.ID
		}
		records = append(records, rec)
	}
	return records, nil
}

// Get returns the record for one (user, class, date) key, or nil when absent.
func (r *AttendanceRepository) Get(ctx context.Context, userID, classID, date string) (*models.AttendanceRecord, error) {
	key := models.AttendanceKey(userID, classID, date)
	var rec models.AttendanceRecord
	if err := r.store.Get(ctx, attendanceCollection, key, &rec); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get attendance %s: %w", key, err)
	}
	return &rec, nil
}

// Upsert applies the attendance state machine for one key:
//
//   - absent record: create with the given status
//   - existing "absent" + automated "present": promote to present
//   - any other existing status + automated write: no-op
//   - manual write: always overwrite
//
// The resulting record is returned either way. Automated inference never
// downgrades a settled outcome and nothing here ever deletes.
func (r *AttendanceRepository) Upsert(ctx context.Context, p models.AttendanceMark) (*models.AttendanceRecord, error) {
	key := models.AttendanceKey(p.UserID, p.ClassID, p.Date)
	lock := r.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	var existing models.AttendanceRecord
	err := r.store.Get(ctx, attendanceCollection, key, &existing)
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		rec := models.AttendanceRecord{
			ID:               key,
			UserID:           p.UserID,
			ClassID:          p.ClassID,
			ClassName:        p.ClassName,
			ClassCode:        p.ClassCode,
			Date:             p.Date,
			Status:           p.Status,
			ManuallyRecorded: p.Manual,
			Timestamp:        r.now().UTC(),
		}
		if err := r.store.Set(ctx, attendanceCollection, key, rec, false); err != nil {
			return nil, fmt.Errorf("create attendance %s: %w", key, err)
		}
		return &rec, nil
	case err != nil:
		return nil, fmt.Errorf("read attendance %s: %w", key, err)
	}

	promote := existing.Status == models.AttendanceStatusAbsent && p.Status == models.AttendanceStatusPresent
	if !p.Manual && !promote {
		return &existing, nil
	}

	updated := r.now().UTC()
	existing.Status = p.Status
	existing.UpdatedAt = &updated
	partial := map[string]interface{}{
		"status":    p.Status,
		"updatedAt": updated,
	}
	if p.Manual {
		existing.ManuallyRecorded = true
		partial["manuallyRecorded"] = true
	}
	if err := r.store.Update(ctx, attendanceCollection, key, partial); err != nil {
		return nil, fmt.Errorf("update attendance %s: %w", key, err)
	}
	return &existing, nil
}

func (r *AttendanceRepository) lockFor(key string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &r.locks[h.Sum32()%lockStripes]
}
