package repositories

import (
	"context"

	"github.com/teewatch/teewatch/internal/domain/entities"
)

// AlertRepository defines the interface for alert rule operations.
type AlertRepository interface {
	// Create inserts a new alert rule.
	Create(ctx context.Context, alert *entities.AlertRule) error

	// GetByID returns one alert rule or a NOT_FOUND error.
	GetByID(ctx context.Context, id string) (*entities.AlertRule, error)

	// ListByUser returns a user's alert rules, newest first.
	ListByUser(ctx context.Context, userID string) ([]*entities.AlertRule, error)

	// ListActive returns every active rule across users, for the watcher.
	ListActive(ctx context.Context) ([]*entities.AlertRule, error)

	// SetActive flips the is_active flag.
	SetActive(ctx context.Context, id string, active bool) error

	// Delete removes an alert rule.
	Delete(ctx context.Context, id string) error
}
