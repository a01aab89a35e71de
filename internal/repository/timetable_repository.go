package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/campus-attend-api/internal/docstore"
	"github.com/noah-isme/campus-attend-api/internal/models"
)

const usersCollection = "users"

// TimetableRepository persists the weekly schedule and holiday set on the
// per-user document.
type TimetableRepository struct {
	store docstore.Store
}

// NewTimetableRepository constructs the repository.
func NewTimetableRepository(store docstore.Store) *TimetableRepository {
	return &TimetableRepository{store: store}
}

// Load returns the user's timetable and holiday set. A missing document is
// not an error; it yields an empty timetable with all weekday buckets present.
func (r *TimetableRepository) Load(ctx context.Context, userID string) (models.Timetable, models.HolidaySet, error) {
	var doc models.UserDocument
	if err := r.store.Get(ctx, usersCollection, userID, &doc); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return models.EmptyTimetable(), models.HolidaySet{}, nil
		}
		return nil, models.HolidaySet{}, fmt.Errorf("load timetable for %s: %w", userID, err)
	}
	holidays := models.HolidaySet{}
	if doc.Holidays != nil {
		holidays = *doc.Holidays
	}
	return doc.Timetable.Normalize(), holidays, nil
}

// Save replaces the timetable and holiday set wholesale, merging into the
// user document so colocated fields survive. Creates the document when
// absent. Last writer wins; there is no optimistic locking.
func (r *TimetableRepository) Save(ctx context.Context, userID string, timetable models.Timetable, holidays models.HolidaySet) error {
	payload := map[string]interface{}{
		"timetable": timetable.Normalize(),
		"holidays":  holidays,
		"updatedAt": time.Now().UTC(),
	}
	if err := r.store.Set(ctx, usersCollection, userID, payload, true); err != nil {
		return fmt.Errorf("save timetable for %s: %w", userID, err)
	}
	return nil
}
