package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-attend-api/internal/models"
	appErrors "github.com/noah-isme/campus-attend-api/pkg/errors"
)

type userProfileStore interface {
	Profile(ctx context.Context, userID string) (models.UserProfile, error)
	SaveProfile(ctx context.Context, userID string, profile models.UserProfile) error
}

// ProfileService reads and merge-saves the editable user profile fields.
type ProfileService struct {
	users     userProfileStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfileService constructs the service.
func NewProfileService(users userProfileStore, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{users: users, validator: validate, logger: logger}
}

// ProfileRequest carries the editable profile fields.
type ProfileRequest struct {
	DisplayName string `json:"displayName" validate:"max=120"`
	Email       string `json:"email" validate:"omitempty,email"`
	Course      string `json:"course" validate:"max=120"`
	Semester    string `json:"semester" validate:"max=32"`
}

// Profile returns the stored profile, zero-valued when never saved.
func (s *ProfileService) Profile(ctx context.Context, userID string) (models.UserProfile, error) {
	profile, err := s.users.Profile(ctx, userID)
	if err != nil {
		return models.UserProfile{}, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load profile")
	}
	return profile, nil
}

// Save validates and merges the profile into the user document.
func (s *ProfileService) Save(ctx context.Context, userID string, req ProfileRequest) (models.UserProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.UserProfile{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile")
	}
	profile := models.UserProfile{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Course:      req.Course,
		Semester:    req.Semester,
	}
	if err := s.users.SaveProfile(ctx, userID, profile); err != nil {
		return models.UserProfile{}, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to save profile")
	}
	s.logger.Sugar().Infow("profile saved", "user_id", userID)
	return profile, nil
}
