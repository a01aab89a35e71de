package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-attend-api/internal/models"
	appErrors "github.com/noah-isme/campus-attend-api/pkg/errors"
)

type timetableStore interface {
	Load(ctx context.Context, userID string) (models.Timetable, models.HolidaySet, error)
	Save(ctx context.Context, userID string, timetable models.Timetable, holidays models.HolidaySet) error
}

type reminderCanceler interface {
	CancelRemindersForUser(userID string)
}

// TimetableService handles weekly schedule workflows.
type TimetableService struct {
	repo      timetableStore
	reminders reminderCanceler
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimetableService constructs the service.
func NewTimetableService(repo timetableStore, reminders reminderCanceler, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &TimetableService{repo: repo, reminders: reminders, validator: validate, logger: logger}
	svc.validator.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		return models.Weekday(fl.Field().String()).Valid()
	})
	svc.validator.RegisterValidation("clocktime", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("15:04", fl.Field().String())
		return err == nil
	})
	return svc
}

// SlotInput describes one class slot in a save payload.
type SlotInput struct {
	ID        string `json:"id"`
	Name      string `json:"name" validate:"required"`
	Code      string `json:"code"`
	StartTime string `json:"startTime" validate:"required,clocktime"`
	EndTime   string `json:"endTime" validate:"required,clocktime"`
}

// SaveTimetableRequest describes the full weekly schedule payload.
type SaveTimetableRequest struct {
	Days            map[string][]SlotInput `json:"days" validate:"required"`
	HolidayWeekdays []string               `json:"holidayWeekdays" validate:"dive,weekday"`
	HolidayDates    []string               `json:"holidayDates" validate:"dive,datetime=2006-01-02"`
}

// TodaySchedule is the resolved schedule for one calendar day.
type TodaySchedule struct {
	Date      string             `json:"date"`
	Weekday   models.Weekday     `json:"weekday"`
	IsHoliday bool               `json:"isHoliday"`
	Classes   []models.ClassSlot `json:"classes"`
}

// Get returns the stored weekly timetable and holiday configuration. A user
// with no stored schedule gets an empty week, not an error.
func (s *TimetableService) Get(ctx context.Context, userID string) (models.Timetable, models.HolidaySet, error) {
	timetable, holidays, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, models.HolidaySet{}, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load timetable")
	}
	return timetable, holidays, nil
}

// Save validates and persists the full weekly schedule, replacing the stored
// one. Pending class reminders are cancelled so a removed slot never fires.
func (s *TimetableService) Save(ctx context.Context, userID string, req SaveTimetableRequest) (models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}

	timetable := models.EmptyTimetable()
	for day, slots := range req.Days {
		weekday := models.Weekday(day)
		if !weekday.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown weekday: "+day)
		}
		for _, input := range slots {
			if err := s.validator.Struct(input); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class slot")
			}
			// Clock times are zero-padded HH:MM, so string order is time order.
			if input.EndTime <= input.StartTime {
				return nil, appErrors.Clone(appErrors.ErrValidation, "class must end after it starts: "+input.Name)
			}
			slot := models.ClassSlot{
				ID:        input.ID,
				Name:      input.Name,
				Code:      input.Code,
				StartTime: input.StartTime,
				EndTime:   input.EndTime,
			}
			if slot.ID == "" {
				slot.ID = uuid.NewString()
			}
			timetable[weekday] = append(timetable[weekday], slot)
		}
	}

	holidays := models.HolidaySet{Dates: req.HolidayDates}
	for _, day := range req.HolidayWeekdays {
		holidays.Weekdays = append(holidays.Weekdays, models.Weekday(day))
	}

	if err := s.repo.Save(ctx, userID, timetable, holidays); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to save timetable")
	}
	if s.reminders != nil {
		s.reminders.CancelRemindersForUser(userID)
	}
	s.logger.Sugar().Infow("timetable saved", "user_id", userID)
	return timetable, nil
}

// Today resolves the schedule for the given point in time, honouring the
// holiday configuration.
func (s *TimetableService) Today(ctx context.Context, userID string, now time.Time) (*TodaySchedule, error) {
	timetable, holidays, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load timetable")
	}
	weekday := models.WeekdayOf(now)
	schedule := &TodaySchedule{
		Date:    models.DateOf(now),
		Weekday: weekday,
		Classes: []models.ClassSlot{},
	}
	if holidays.Contains(now) {
		schedule.IsHoliday = true
		return schedule, nil
	}
	schedule.Classes = append(schedule.Classes, timetable[weekday]...)
	return schedule, nil
}
