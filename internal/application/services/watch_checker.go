package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teewatch/teewatch/internal/domain/entities"
	"github.com/teewatch/teewatch/internal/domain/providers"
	"github.com/teewatch/teewatch/internal/domain/repositories"
	"github.com/teewatch/teewatch/internal/infrastructure/observability"
)

// facilitySearcher is the slice of SearchService the checker needs: a
// search narrowed to one facility by name.
type facilitySearcher interface {
	SearchFacility(ctx context.Context, filter *entities.SearchFilter, facilityName string) ([]entities.FacilityTeeTimes, error)
}

// WatchChecker is the background worker behind the notified flag: it
// reminds users about watched slots as tee-off approaches and fires
// stored alert rules when matching tee times show up in a fresh search.
type WatchChecker struct {
	watches        repositories.WatchRepository
	alerts         repositories.AlertRepository
	courses        repositories.CourseRepository
	search         facilitySearcher
	notifier       providers.Notifier
	tick           time.Duration
	reminderWindow time.Duration
	metrics        *observability.Metrics
}

// NewWatchChecker creates a new checker.
func NewWatchChecker(
	watches repositories.WatchRepository,
	alerts repositories.AlertRepository,
	courses repositories.CourseRepository,
	search facilitySearcher,
	notifier providers.Notifier,
	tick time.Duration,
	metrics *observability.Metrics,
) *WatchChecker {
	if tick <= 0 {
		tick = time.Minute
	}
	return &WatchChecker{
		watches:        watches,
		alerts:         alerts,
		courses:        courses,
		search:         search,
		notifier:       notifier,
		tick:           tick,
		reminderWindow: 24 * time.Hour,
		metrics:        metrics,
	}
}

// Run checks on every tick until ctx is cancelled.
func (c *WatchChecker) Run(ctx context.Context) {
	c.RunOnce(ctx)

	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.RunOnce(ctx)
		}
	}
}

// RunOnce performs one full pass. Per-item failures are logged and
// skipped; the pass keeps going.
func (c *WatchChecker) RunOnce(ctx context.Context) {
	logger := observability.LoggerFromContext(ctx)
	now := time.Now()

	if err := c.remindWatches(ctx, now); err != nil {
		logger.Error().Err(err).Msg("watch reminder pass failed")
	}
	if err := c.fireAlertRules(ctx, now); err != nil {
		logger.Error().Err(err).Msg("alert rule pass failed")
	}
}

// remindWatches sends one reminder per unnotified watch whose tee time
// falls inside the reminder window, then flips notified so it never
// fires twice.
func (c *WatchChecker) remindWatches(ctx context.Context, now time.Time) error {
	logger := observability.LoggerFromContext(ctx)

	watches, err := c.watches.ListUnnotified(ctx, now)
	if err != nil {
		return err
	}

	for _, watch := range watches {
		if watch.TeeTime.Sub(now) > c.reminderWindow {
			continue
		}

		notification := &providers.Notification{
			Recipient: watch.UserEmail,
			Title:     "Tee time coming up",
			Body:      fmt.Sprintf("Your watched tee time is at %s", watch.TeeTime.Format("3:04 PM on Jan 2")),
			URL:       watch.URL,
		}
		if err := c.notifier.Send(ctx, notification); err != nil {
			logger.Warn().Err(err).Int64("watch_id", watch.ID).Msg("failed to send watch reminder")
			continue
		}
		if err := c.watches.MarkNotified(ctx, watch.ID); err != nil {
			logger.Error().Err(err).Int64("watch_id", watch.ID).Msg("failed to mark watch notified")
			continue
		}
		observability.RecordNotifyMetric(ctx, c.metrics, "watch")
	}

	return nil
}

// fireAlertRules searches the provider for each active rule and notifies
// the owner on the first matching slot. A fired rule is deactivated.
func (c *WatchChecker) fireAlertRules(ctx context.Context, now time.Time) error {
	logger := observability.LoggerFromContext(ctx)

	rules, err := c.alerts.ListActive(ctx)
	if err != nil {
		return err
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for _, rule := range rules {
		if rule.AlertDate.Before(today) {
			continue
		}

		slot, course, found := c.findMatch(ctx, rule)
		if !found {
			continue
		}

		notification := &providers.Notification{
			Recipient: rule.UserID,
			Title:     "Tee time available",
			Body:      fmt.Sprintf("%s has a %s tee time on %s", course.Name, slot.Time, rule.AlertDate.Format("Jan 2")),
			URL:       slot.DetailURL,
		}
		if err := c.notifier.Send(ctx, notification); err != nil {
			logger.Warn().Err(err).Str("alert_id", rule.ID).Msg("failed to send alert notification")
			continue
		}
		if err := c.alerts.SetActive(ctx, rule.ID, false); err != nil {
			logger.Error().Err(err).Str("alert_id", rule.ID).Msg("failed to deactivate fired alert")
			continue
		}
		observability.RecordNotifyMetric(ctx, c.metrics, "alert")
	}

	return nil
}

// findMatch returns the first slot satisfying the rule across its
// courses.
func (c *WatchChecker) findMatch(ctx context.Context, rule *entities.AlertRule) (entities.DisplaySlot, *entities.Course, bool) {
	logger := observability.LoggerFromContext(ctx)

	startHour, startMinute, err := parseClock(rule.StartTime)
	if err != nil {
		logger.Warn().Err(err).Str("alert_id", rule.ID).Msg("alert rule has a malformed start time")
		return entities.DisplaySlot{}, nil, false
	}
	endHour, endMinute, err := parseClock(rule.EndTime)
	if err != nil {
		logger.Warn().Err(err).Str("alert_id", rule.ID).Msg("alert rule has a malformed end time")
		return entities.DisplaySlot{}, nil, false
	}
	windowStart := startHour*60 + startMinute
	windowEnd := endHour*60 + endMinute

	for _, courseID := range rule.CourseIDs {
		course, err := c.courses.GetByID(ctx, courseID)
		if err != nil {
			logger.Warn().Err(err).Int64("course_id", courseID).Msg("failed to load alert course")
			continue
		}

		// The course name seeds geocoding; the results are matched on
		// the facility name, since a course never carries a city.
		filter := &entities.SearchFilter{
			City:    course.Name,
			Date:    rule.AlertDate,
			Players: strconv.Itoa(rule.Players),
			TimeMin: startHour,
			TimeMax: endHour,
		}
		groups, err := c.search.SearchFacility(ctx, filter, course.Name)
		if err != nil {
			logger.Warn().Err(err).Str("course", course.Name).Msg("alert search failed")
			continue
		}

		for _, group := range groups {
			for _, slot := range group.Slots {
				teeTime, err := combineSlotTime(slot.Time, rule.AlertDate)
				if err != nil {
					continue
				}
				minutes := teeTime.Hour()*60 + teeTime.Minute()
				if minutes >= windowStart && minutes <= windowEnd {
					return slot, course, true
				}
			}
		}
	}

	return entities.DisplaySlot{}, nil, false
}

// parseClock splits an "HH:MM" rule boundary.
func parseClock(value string) (int, int, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hour, minute, nil
}
