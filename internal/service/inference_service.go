package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-attend-api/internal/models"
	appErrors "github.com/noah-isme/campus-attend-api/pkg/errors"
	"github.com/noah-isme/campus-attend-api/pkg/geo"
)

type userGeoStore interface {
	CampusLocation(ctx context.Context, userID string) (*models.CampusLocation, error)
	SavePresence(ctx context.Context, userID string, presence models.PresenceStatus) error
}

type timetableLoader interface {
	Load(ctx context.Context, userID string) (models.Timetable, models.HolidaySet, error)
}

type attendanceMarker interface {
	Upsert(ctx context.Context, mark models.AttendanceMark) (*models.AttendanceRecord, error)
}

type eventSink interface {
	Dispatch(n models.Notification)
}

type statsInvalidator interface {
	Invalidate(ctx context.Context, userID string)
}

// InferenceServiceConfig tunes campus-presence resolution.
type InferenceServiceConfig struct {
	DefaultRadiusMeters float64
}

// InferenceService is the automated attendance engine. Each location sample
// is resolved to a campus-presence verdict, matched against the timetable's
// current slots, and recorded per class per day.
type InferenceService struct {
	users      userGeoStore
	timetables timetableLoader
	attendance attendanceMarker
	events     eventSink
	stats      statsInvalidator
	metrics    *MetricsService
	logger     *zap.Logger
	cfg        InferenceServiceConfig
}

// InferenceServiceParams groups constructor dependencies.
type InferenceServiceParams struct {
	Users      userGeoStore
	Timetables timetableLoader
	Attendance attendanceMarker
	Events     eventSink
	Stats      statsInvalidator
	Metrics    *MetricsService
	Logger     *zap.Logger
	Config     InferenceServiceConfig
}

// NewInferenceService constructs the engine.
func NewInferenceService(params InferenceServiceParams) *InferenceService {
	cfg := params.Config
	if cfg.DefaultRadiusMeters <= 0 {
		cfg.DefaultRadiusMeters = models.DefaultCampusRadiusMeters
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InferenceService{
		users:      params.Users,
		timetables: params.Timetables,
		attendance: params.Attendance,
		events:     params.Events,
		stats:      params.Stats,
		metrics:    params.Metrics,
		logger:     logger,
		cfg:        cfg,
	}
}

// Check processes one location sample for a user at a point in time.
//
// The returned presence is nil when no geofence is configured or the pass
// could not be determined. Presence is persisted before any class matching,
// so a sample on a holiday or outside all slots still updates the snapshot.
func (s *InferenceService) Check(ctx context.Context, userID string, pos models.Position, now time.Time) (*bool, error) {
	campus, err := s.users.CampusLocation(ctx, userID)
	if err != nil {
		s.metrics.ObserveInference(nil)
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "could not determine attendance")
	}
	if campus == nil {
		s.logger.Sugar().Debugw("no campus location configured, skipping check", "user_id", userID)
		s.metrics.ObserveInference(nil)
		return nil, nil
	}

	radius := campus.RadiusMeters
	if radius <= 0 {
		radius = s.cfg.DefaultRadiusMeters
	}
	distance := geo.DistanceMeters(pos.Latitude, pos.Longitude, campus.Latitude, campus.Longitude)
	isPresent := distance <= radius

	if err := s.users.SavePresence(ctx, userID, models.PresenceStatus{IsOnCampus: isPresent, LastLocationCheck: now}); err != nil {
		// Best effort: a stale presence snapshot must not block class matching.
		s.logger.Sugar().Errorw("failed to persist presence", "user_id", userID, "error", err)
	}

	s.logger.Sugar().Debugw("location sample resolved",
		"user_id", userID, "distance_m", distance, "radius_m", radius, "on_campus", isPresent)

	timetable, holidays, err := s.timetables.Load(ctx, userID)
	if err != nil {
		s.metrics.ObserveInference(&isPresent)
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "could not determine attendance")
	}

	s.metrics.ObserveInference(&isPresent)

	if holidays.Contains(now) {
		s.logger.Sugar().Debugw("holiday, skipping class matching", "user_id", userID, "date", models.DateOf(now))
		return &isPresent, nil
	}

	weekday := models.WeekdayOf(now)
	clock := models.ClockTimeOf(now)
	date := models.DateOf(now)

	status := models.AttendanceStatusAbsent
	if isPresent {
		status = models.AttendanceStatusPresent
	}

	// Overlapping slots are matched independently, not deduplicated. A
	// failed write for one class never aborts the others. Notifications are
	// grouped by the resulting status, which can differ from the computed
	// one when the no-downgrade rule keeps an earlier outcome.
	markedByStatus := map[models.AttendanceStatus][]models.ClassSlot{}
	for _, slot := range timetable[weekday] {
		if !slot.Covers(clock) {
			continue
		}
		rec, err := s.attendance.Upsert(ctx, models.AttendanceMark{
			UserID:    userID,
			ClassID:   slot.ID,
			ClassName: slot.Name,
			ClassCode: slot.Code,
			Date:      date,
			Status:    status,
		})
		if err != nil {
			s.logger.Sugar().Errorw("attendance write failed",
				"user_id", userID, "class_id", slot.ID, "date", date, "error", err)
			continue
		}
		markedByStatus[rec.Status] = append(markedByStatus[rec.Status], slot)
		s.metrics.ObserveMark(string(rec.Status))
	}

	if len(markedByStatus) > 0 {
		s.notifyMarked(userID, markedByStatus[models.AttendanceStatusPresent], true, now)
		s.notifyMarked(userID, markedByStatus[models.AttendanceStatusAbsent], false, now)
		if s.stats != nil {
			s.stats.Invalidate(ctx, userID)
		}
	}

	return &isPresent, nil
}

func (s *InferenceService) notifyMarked(userID string, slots []models.ClassSlot, present bool, now time.Time) {
	if s.events == nil || len(slots) == 0 {
		return
	}
	kind := models.NotificationMarkedAbsent
	message := fmt.Sprintf("Marked absent for %d ongoing class(es)", len(slots))
	if present {
		kind = models.NotificationAttendanceMarked
		message = fmt.Sprintf("Attendance marked for %d ongoing class(es)", len(slots))
	}
	if len(slots) == 1 {
		if present {
			message = fmt.Sprintf("Attendance marked for %s", slots[0].Name)
		} else {
			message = fmt.Sprintf("Marked absent for %s", slots[0].Name)
		}
	}
	s.events.Dispatch(models.Notification{
		UserID:    userID,
		Type:      kind,
		Subject:   slots[0].Code,
		Message:   message,
		Timestamp: now,
	})
}
