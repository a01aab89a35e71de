package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-attend-api/internal/models"
	appErrors "github.com/noah-isme/campus-attend-api/pkg/errors"
)

type userLocationStore interface {
	CampusLocation(ctx context.Context, userID string) (*models.CampusLocation, error)
	SaveCampusLocation(ctx context.Context, userID string, loc models.CampusLocation) error
	Presence(ctx context.Context, userID string) (*models.PresenceStatus, error)
}

type presenceChecker interface {
	Check(ctx context.Context, userID string, pos models.Position, now time.Time) (*bool, error)
}

type positionObserver interface {
	Observe(userID string, pos models.Position)
}

// LocationService owns the geofence configuration and the location check
// entrypoint. The check itself runs through the inference engine so an API
// call and a scheduler tick share one code path.
type LocationService struct {
	users     userLocationStore
	inference presenceChecker
	observer  positionObserver
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewLocationService constructs the service. The observer is optional; when
// set, every accepted position is forwarded to it so the polling scheduler
// can keep re-evaluating the last fix.
func NewLocationService(users userLocationStore, inference presenceChecker, observer positionObserver, validate *validator.Validate, logger *zap.Logger) *LocationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocationService{
		users:     users,
		inference: inference,
		observer:  observer,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// CampusLocationRequest describes a geofence update.
type CampusLocationRequest struct {
	Name         string  `json:"name"`
	Latitude     float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude    float64 `json:"longitude" validate:"min=-180,max=180"`
	RadiusMeters float64 `json:"radiusMeters" validate:"min=0"`
}

// CheckResult is the outcome of one location check.
type CheckResult struct {
	Determined bool       `json:"determined"`
	IsOnCampus bool       `json:"isOnCampus"`
	CheckedAt  time.Time  `json:"checkedAt"`
	Marked     *time.Time `json:"-"`
}

// Campus returns the stored geofence, nil when none is configured.
func (s *LocationService) Campus(ctx context.Context, userID string) (*models.CampusLocation, error) {
	campus, err := s.users.CampusLocation(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load campus location")
	}
	return campus, nil
}

// SaveCampus validates and persists the geofence.
func (s *LocationService) SaveCampus(ctx context.Context, userID string, req CampusLocationRequest) (*models.CampusLocation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid campus location")
	}
	loc := models.CampusLocation{
		Name:         req.Name,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		RadiusMeters: req.RadiusMeters,
	}
	if err := s.users.SaveCampusLocation(ctx, userID, loc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to save campus location")
	}
	s.logger.Sugar().Infow("campus location saved", "user_id", userID, "name", loc.Name)
	return &loc, nil
}

// Check runs one inference pass for a submitted position.
func (s *LocationService) Check(ctx context.Context, userID string, pos models.Position) (*CheckResult, error) {
	if err := s.validatePosition(pos); err != nil {
		return nil, err
	}
	if s.observer != nil {
		s.observer.Observe(userID, pos)
	}
	now := s.now().UTC()
	presence, err := s.inference.Check(ctx, userID, pos, now)
	if err != nil {
		return nil, err
	}
	result := &CheckResult{CheckedAt: now}
	if presence != nil {
		result.Determined = true
		result.IsOnCampus = *presence
	}
	return result, nil
}

// Presence returns the last persisted presence snapshot.
func (s *LocationService) Presence(ctx context.Context, userID string) (*models.PresenceStatus, error) {
	presence, err := s.users.Presence(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load presence")
	}
	return presence, nil
}

func (s *LocationService) validatePosition(pos models.Position) error {
	if pos.Latitude < -90 || pos.Latitude > 90 {
		return appErrors.Clone(appErrors.ErrValidation, "latitude out of range")
	}
	if pos.Longitude < -180 || pos.Longitude > 180 {
		return appErrors.Clone(appErrors.ErrValidation, "longitude out of range")
	}
	return nil
}
