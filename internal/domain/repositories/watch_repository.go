package repositories

import (
	"context"
	"time"

	"github.com/teewatch/teewatch/internal/domain/entities"
)

// WatchRepository defines the interface for watch entry operations.
// (url, user_email) is the natural key: the reconciler treats URL equality
// as slot identity across polls.
type WatchRepository interface {
	// Exists reports whether a watch row exists for (url, userEmail).
	Exists(ctx context.Context, url, userEmail string) (bool, error)

	// Create inserts a new watch entry.
	Create(ctx context.Context, watch *entities.WatchEntry) error

	// Delete removes the watch row keyed by (url, userEmail).
	Delete(ctx context.Context, url, userEmail string) error

	// ListByUser returns a user's watch entries, soonest tee time first.
	ListByUser(ctx context.Context, userEmail string) ([]*entities.WatchEntry, error)

	// ListUnnotified returns watch entries whose tee time is at or after
	// cutoff and that have not been notified yet.
	ListUnnotified(ctx context.Context, cutoff time.Time) ([]*entities.WatchEntry, error)

	// MarkNotified flips the notified flag on one entry.
	MarkNotified(ctx context.Context, id int64) error
}
