package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-attend-api/internal/models"
	appErrors "github.com/noah-isme/campus-attend-api/pkg/errors"
)

type settingsStore interface {
	NotificationSettings(ctx context.Context, userID string) (models.NotificationSettings, error)
	SaveNotificationSettings(ctx context.Context, userID string, settings models.NotificationSettings) error
}

type notificationLister interface {
	ListByUser(ctx context.Context, userID string) ([]models.Notification, error)
}

type subjectStatsProvider interface {
	SubjectSummaries(ctx context.Context, userID string) ([]models.SubjectSummary, error)
}

// NotificationServiceConfig tunes the notification policy.
type NotificationServiceConfig struct {
	ReminderLead           time.Duration
	LowAttendanceThreshold float64
}

// NotificationService owns notification preferences, class reminder timers
// and the low-attendance warning policy. Reminders are in-process timers
// keyed per user/slot/date so a timetable change can cancel the stale ones.
type NotificationService struct {
	settings   settingsStore
	list       notificationLister
	timetables timetableLoader
	stats      subjectStatsProvider
	events     eventSink
	logger     *zap.Logger
	now        func() time.Time
	cfg        NotificationServiceConfig

	mu        sync.Mutex
	timers    map[string]*time.Timer
	scheduled map[string]string // userID -> date the last cycle ran for
}

// NotificationServiceParams groups constructor dependencies.
type NotificationServiceParams struct {
	Settings   settingsStore
	List       notificationLister
	Timetables timetableLoader
	Stats      subjectStatsProvider
	Events     eventSink
	Logger     *zap.Logger
	Config     NotificationServiceConfig
}

// NewNotificationService constructs a NotificationService with sane defaults.
func NewNotificationService(params NotificationServiceParams) *NotificationService {
	cfg := params.Config
	if cfg.ReminderLead <= 0 {
		cfg.ReminderLead = 5 * time.Minute
	}
	if cfg.LowAttendanceThreshold <= 0 {
		cfg.LowAttendanceThreshold = 75
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		settings:   params.Settings,
		list:       params.List,
		timetables: params.Timetables,
		stats:      params.Stats,
		events:     params.Events,
		logger:     logger,
		now:        time.Now,
		cfg:        cfg,
		timers:     map[string]*time.Timer{},
		scheduled:  map[string]string{},
	}
}

// Settings returns the user's notification preferences, falling back to
// defaults when none are stored.
func (s *NotificationService) Settings(ctx context.Context, userID string) (models.NotificationSettings, error) {
	return s.settings.NotificationSettings(ctx, userID)
}

// SaveSettings validates and persists preferences, then reschedules the
// day's reminders so a toggle takes effect immediately.
func (s *NotificationService) SaveSettings(ctx context.Context, userID string, settings models.NotificationSettings) error {
	if settings.LowAttendanceThreshold < 0 || settings.LowAttendanceThreshold > 100 {
		return appErrors.Clone(appErrors.ErrValidation, "lowAttendanceThreshold must be between 0 and 100")
	}
	if err := s.settings.SaveNotificationSettings(ctx, userID, settings); err != nil {
		return err
	}
	s.CancelRemindersForUser(userID)
	if settings.Enabled && settings.ClassReminders {
		if err := s.scheduleReminders(ctx, userID, s.now()); err != nil {
			s.logger.Warn("reminder reschedule failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return nil
}

// History returns the user's persisted notifications, newest first.
func (s *NotificationService) History(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.list.ListByUser(ctx, userID)
}

// EnsureDay runs the scheduling cycle at most once per user per calendar
// day. Every authenticated request passes through here, so a user's first
// request of the day arms their reminders and runs the low-attendance check;
// repeat calls are a map lookup. A failed cycle is forgotten so the next
// request retries it.
func (s *NotificationService) EnsureDay(ctx context.Context, userID string) error {
	date := models.DateOf(s.now())
	s.mu.Lock()
	if s.scheduled[userID] == date {
		s.mu.Unlock()
		return nil
	}
	s.scheduled[userID] = date
	s.mu.Unlock()

	if err := s.ScheduleDay(ctx, userID); err != nil {
		s.mu.Lock()
		delete(s.scheduled, userID)
		s.mu.Unlock()
		return err
	}
	return nil
}

// ScheduleDay arms reminders for today's remaining classes and runs the
// low-attendance check, honouring the user's preferences. Safe to call
// repeatedly; stale timers for the user are replaced.
func (s *NotificationService) ScheduleDay(ctx context.Context, userID string) error {
	settings, err := s.settings.NotificationSettings(ctx, userID)
	if err != nil {
		return err
	}
	if !settings.Enabled {
		s.logger.Sugar().Debugw("notifications disabled, skipping schedule", "user_id", userID)
		return nil
	}

	now := s.now()
	if settings.ClassReminders {
		s.CancelRemindersForUser(userID)
		if err := s.scheduleReminders(ctx, userID, now); err != nil {
			return err
		}
	}
	if settings.AttendanceWarnings {
		threshold := settings.LowAttendanceThreshold
		if threshold <= 0 {
			threshold = s.cfg.LowAttendanceThreshold
		}
		if err := s.CheckLowAttendance(ctx, userID, threshold); err != nil {
			return err
		}
	}
	return nil
}

func (s *NotificationService) scheduleReminders(ctx context.Context, userID string, now time.Time) error {
	timetable, holidays, err := s.timetables.Load(ctx, userID)
	if err != nil {
		return err
	}
	if holidays.Contains(now) {
		return nil
	}

	date := models.DateOf(now)
	for _, slot := range timetable[models.WeekdayOf(now)] {
		start, err := time.Parse("15:04", slot.StartTime)
		if err != nil {
			s.logger.Sugar().Warnw("unparseable slot start, skipping reminder",
				"user_id", userID, "slot_id", slot.ID, "start", slot.StartTime)
			continue
		}
		classAt := time.Date(now.Year(), now.Month(), now.Day(), start.Hour(), start.Minute(), 0, 0, now.Location())
		remindAt := classAt.Add(-s.cfg.ReminderLead)
		if !remindAt.After(now) {
			continue // already started or too close
		}
		s.armReminder(userID, slot, date, remindAt.Sub(now))
	}
	return nil
}

func (s *NotificationService) armReminder(userID string, slot models.ClassSlot, date string, in time.Duration) {
	key := reminderKey(userID, slot.ID, date)
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.timers[key]; ok {
		old.Stop()
	}
	s.timers[key] = time.AfterFunc(in, func() {
		s.fireReminder(userID, slot, key)
	})
	s.logger.Sugar().Debugw("class reminder armed", "user_id", userID, "slot_id", slot.ID, "in", in)
}

func (s *NotificationService) fireReminder(userID string, slot models.ClassSlot, key string) {
	s.mu.Lock()
	delete(s.timers, key)
	s.mu.Unlock()

	minutes := int(s.cfg.ReminderLead.Minutes())
	s.events.Dispatch(models.Notification{
		UserID:    userID,
		Type:      models.NotificationClassReminder,
		Subject:   slot.Code,
		Message:   fmt.Sprintf("%s starts in %d minutes!", slot.Name, minutes),
		Timestamp: s.now(),
	})
}

// CancelRemindersForUser stops every pending reminder timer for a user.
// Called on timetable changes so a removed class never fires.
func (s *NotificationService) CancelRemindersForUser(userID string) {
	prefix := userID + "|"
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, timer := range s.timers {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			timer.Stop()
			delete(s.timers, key)
		}
	}
}

// Close stops all pending timers.
func (s *NotificationService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, timer := range s.timers {
		timer.Stop()
		delete(s.timers, key)
	}
}

// CheckLowAttendance emits one warning per subject sitting below the
// threshold.
func (s *NotificationService) CheckLowAttendance(ctx context.Context, userID string, threshold float64) error {
	if threshold <= 0 {
		threshold = s.cfg.LowAttendanceThreshold
	}
	summaries, err := s.stats.SubjectSummaries(ctx, userID)
	if err != nil {
		return err
	}
	now := s.now()
	for _, subject := range summaries {
		if subject.Percentage >= threshold {
			continue
		}
		s.events.Dispatch(models.Notification{
			UserID:  userID,
			Type:    models.NotificationAttendanceWarning,
			Subject: subject.ClassID,
			Message: fmt.Sprintf("Warning: Your attendance in %s is only %.1f%%, below the required %.0f%%",
				subject.ClassName, subject.Percentage, threshold),
			Timestamp: now,
		})
	}
	return nil
}

func reminderKey(userID, slotID, date string) string {
	return userID + "|" + slotID + "|" + date
}
