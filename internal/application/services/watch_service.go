package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/teewatch/teewatch/internal/domain/entities"
	"github.com/teewatch/teewatch/internal/domain/repositories"
	"github.com/teewatch/teewatch/internal/infrastructure/observability"
	apperrors "github.com/teewatch/teewatch/pkg/errors"
)

// slotTimeLayout matches the provider's display time, e.g. "6:00 AM".
const slotTimeLayout = "3:04 PM"

// WatchService reconciles displayed slots against the user's stored
// watches. A watch is identified by (url, userEmail); url equality is
// slot identity across polls.
type WatchService struct {
	watches    repositories.WatchRepository
	detailBase string
}

// NewWatchService creates a new watch service. detailBase is the provider
// origin used to absolutize relative slot detail paths.
func NewWatchService(watches repositories.WatchRepository, detailBase string) *WatchService {
	return &WatchService{
		watches:    watches,
		detailBase: detailBase,
	}
}

// CheckStatus reports whether the user watches the given slot URL.
// Lookup failures read as "not watched"; status display degrades rather
// than erroring.
func (s *WatchService) CheckStatus(ctx context.Context, url, userEmail string) bool {
	if userEmail == "" {
		return false
	}

	exists, err := s.watches.Exists(ctx, url, userEmail)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("url", url).
			Msg("watch status lookup failed, reporting not watched")
		return false
	}
	return exists
}

// Statuses resolves watch status for every displayed slot concurrently
// and returns the whole mapping at once.
func (s *WatchService) Statuses(ctx context.Context, userEmail string, slots []entities.DisplaySlot) map[string]bool {
	statuses := make(map[string]bool, len(slots))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, slot := range slots {
		url := absoluteDetailURL(s.detailBase, slot.DetailURL)
		wg.Add(1)
		go func() {
			defer wg.Done()
			watched := s.CheckStatus(ctx, url, userEmail)
			mu.Lock()
			statuses[url] = watched
			mu.Unlock()
		}()
	}
	wg.Wait()

	return statuses
}

// Toggle flips the watch on one slot for the given date. Unauthenticated
// callers are rejected before any storage call; a slot time that does not
// parse aborts before any row is written.
func (s *WatchService) Toggle(ctx context.Context, userEmail string, slot entities.DisplaySlot, date time.Time) (bool, error) {
	if userEmail == "" {
		return false, apperrors.NewAuthRequiredError("sign in to watch tee times")
	}

	url := absoluteDetailURL(s.detailBase, slot.DetailURL)

	exists, err := s.watches.Exists(ctx, url, userEmail)
	if err != nil {
		return false, err
	}

	if exists {
		if err := s.watches.Delete(ctx, url, userEmail); err != nil {
			return true, err
		}
		return false, nil
	}

	teeTime, err := combineSlotTime(slot.Time, date)
	if err != nil {
		return false, err
	}

	watch := &entities.WatchEntry{
		UserEmail: userEmail,
		URL:       url,
		TeeTime:   teeTime,
		Notified:  false,
	}
	if err := s.watches.Create(ctx, watch); err != nil {
		return false, err
	}

	return true, nil
}

// List returns the user's watches.
func (s *WatchService) List(ctx context.Context, userEmail string) ([]*entities.WatchEntry, error) {
	if userEmail == "" {
		return nil, apperrors.NewAuthRequiredError("sign in to list watched tee times")
	}
	return s.watches.ListByUser(ctx, userEmail)
}

// combineSlotTime parses a display time like "6:00 AM" and anchors it on
// the selected date in local time.
func combineSlotTime(display string, date time.Time) (time.Time, error) {
	parsed, err := time.Parse(slotTimeLayout, strings.TrimSpace(display))
	if err != nil {
		return time.Time{}, apperrors.NewMalformedTimeError("slot time does not match expected format", err)
	}

	return time.Date(
		date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0,
		time.Local,
	), nil
}
