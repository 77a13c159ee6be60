package services

import (
	"context"
	"time"

	"github.com/teewatch/teewatch/internal/domain/entities"
	"github.com/teewatch/teewatch/internal/domain/repositories"
	apperrors "github.com/teewatch/teewatch/pkg/errors"
)

// AlertService manages stored alert rules. Rules are plain preference
// records; the watch checker is what acts on them.
type AlertService struct {
	alerts  repositories.AlertRepository
	courses repositories.CourseRepository
}

// NewAlertService creates a new alert service.
func NewAlertService(alerts repositories.AlertRepository, courses repositories.CourseRepository) *AlertService {
	return &AlertService{
		alerts:  alerts,
		courses: courses,
	}
}

// Create validates and stores a new rule for the user.
func (s *AlertService) Create(ctx context.Context, userID string, rule *entities.AlertRule) (*entities.AlertRule, error) {
	if userID == "" {
		return nil, apperrors.NewAuthRequiredError("sign in to create alerts")
	}
	if err := s.validate(ctx, rule); err != nil {
		return nil, err
	}

	rule.UserID = userID
	rule.IsActive = true
	if err := s.alerts.Create(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// ListByUser returns the user's rules, newest first.
func (s *AlertService) ListByUser(ctx context.Context, userID string) ([]*entities.AlertRule, error) {
	if userID == "" {
		return nil, apperrors.NewAuthRequiredError("sign in to list alerts")
	}
	return s.alerts.ListByUser(ctx, userID)
}

// SetActive toggles a rule the user owns.
func (s *AlertService) SetActive(ctx context.Context, userID, alertID string, active bool) error {
	if err := s.authorize(ctx, userID, alertID); err != nil {
		return err
	}
	return s.alerts.SetActive(ctx, alertID, active)
}

// Delete removes a rule the user owns.
func (s *AlertService) Delete(ctx context.Context, userID, alertID string) error {
	if err := s.authorize(ctx, userID, alertID); err != nil {
		return err
	}
	return s.alerts.Delete(ctx, alertID)
}

func (s *AlertService) authorize(ctx context.Context, userID, alertID string) error {
	if userID == "" {
		return apperrors.NewAuthRequiredError("sign in to manage alerts")
	}

	rule, err := s.alerts.GetByID(ctx, alertID)
	if err != nil {
		return err
	}
	if rule.UserID != userID {
		return apperrors.NewNotFoundError("alert not found")
	}
	return nil
}

func (s *AlertService) validate(ctx context.Context, rule *entities.AlertRule) error {
	if rule == nil {
		return apperrors.NewValidationError("alert rule is required")
	}
	if len(rule.CourseIDs) == 0 {
		return apperrors.NewValidationError("at least one course is required")
	}
	if rule.AlertDate.IsZero() {
		return apperrors.NewValidationError("alert date is required")
	}
	if rule.Players < 1 || rule.Players > 4 {
		return apperrors.NewValidationError("players must be between 1 and 4")
	}

	startHour, startMinute, err := parseClock(rule.StartTime)
	if err != nil {
		return apperrors.NewValidationError("start time must be HH:MM")
	}
	endHour, endMinute, err := parseClock(rule.EndTime)
	if err != nil {
		return apperrors.NewValidationError("end time must be HH:MM")
	}
	if startHour*60+startMinute >= endHour*60+endMinute {
		return apperrors.NewValidationError("start time must be before end time")
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if rule.AlertDate.Before(today) {
		return apperrors.NewValidationError("alert date is in the past")
	}

	for _, courseID := range rule.CourseIDs {
		if _, err := s.courses.GetByID(ctx, courseID); err != nil {
			return apperrors.NewValidationError("unknown course in alert rule")
		}
	}

	return nil
}
