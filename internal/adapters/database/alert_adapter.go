package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/teewatch/teewatch/internal/domain/entities"
	"github.com/teewatch/teewatch/internal/domain/repositories"
	"github.com/teewatch/teewatch/internal/infrastructure/clients/postgres"
	apperrors "github.com/teewatch/teewatch/pkg/errors"
)

// AlertAdapter implements alert rule persistence in Postgres.
type AlertAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAlertAdapter creates a new alert adapter.
func NewAlertAdapter(client *postgres.Client) repositories.AlertRepository {
	return &AlertAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a new alert rule.
func (a *AlertAdapter) Create(ctx context.Context, alert *entities.AlertRule) error {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}

	record := goqu.Record{
		"id":         alert.ID,
		"user_id":    alert.UserID,
		"course_ids": pq.Array(alert.CourseIDs),
		"alert_date": alert.AlertDate,
		"start_time": alert.StartTime,
		"end_time":   alert.EndTime,
		"players":    alert.Players,
		"is_active":  alert.IsActive,
		"created_at": alert.CreatedAt,
	}

	query, args, err := a.db.Insert("alerts").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build alert insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create alert", err)
	}

	return nil
}

// GetByID returns one alert rule or a NOT_FOUND error.
func (a *AlertAdapter) GetByID(ctx context.Context, id string) (*entities.AlertRule, error) {
	query, args, err := a.db.From("alerts").
		Select(alertColumns()...).
		Where(goqu.Ex{"id": id}).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build alert query", err)
	}

	alert, err := scanAlert(a.client.DB().QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFoundError("alert not found")
		}
		return nil, apperrors.NewInternalError("failed to get alert", err)
	}

	return alert, nil
}

// ListByUser returns a user's alert rules, newest first.
func (a *AlertAdapter) ListByUser(ctx context.Context, userID string) ([]*entities.AlertRule, error) {
	ds := a.db.From("alerts").
		Select(alertColumns()...).
		Where(goqu.Ex{"user_id": userID}).
		Order(goqu.I("created_at").Desc())

	return a.listAlerts(ctx, ds)
}

// ListActive returns every active rule across users, for the watcher.
func (a *AlertAdapter) ListActive(ctx context.Context) ([]*entities.AlertRule, error) {
	ds := a.db.From("alerts").
		Select(alertColumns()...).
		Where(goqu.Ex{"is_active": true}).
		Order(goqu.I("alert_date").Asc())

	return a.listAlerts(ctx, ds)
}

// SetActive flips the is_active flag.
func (a *AlertAdapter) SetActive(ctx context.Context, id string, active bool) error {
	query, args, err := a.db.Update("alerts").
		Set(goqu.Record{"is_active": active}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build alert update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update alert", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.NewNotFoundError("alert not found")
	}

	return nil
}

// Delete removes an alert rule.
func (a *AlertAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("alerts").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build alert delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete alert", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.NewNotFoundError("alert not found")
	}

	return nil
}

func (a *AlertAdapter) listAlerts(ctx context.Context, ds *goqu.SelectDataset) ([]*entities.AlertRule, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build alert list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list alerts", err)
	}
	defer rows.Close()

	var alerts []*entities.AlertRule
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan alert row", err)
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read alert rows", err)
	}

	return alerts, nil
}

func alertColumns() []interface{} {
	return []interface{}{
		"id", "user_id", "course_ids", "alert_date",
		"start_time", "end_time", "players", "is_active", "created_at",
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAlert(row rowScanner) (*entities.AlertRule, error) {
	alert := &entities.AlertRule{}
	var courseIDs pq.Int64Array
	if err := row.Scan(
		&alert.ID,
		&alert.UserID,
		&courseIDs,
		&alert.AlertDate,
		&alert.StartTime,
		&alert.EndTime,
		&alert.Players,
		&alert.IsActive,
		&alert.CreatedAt,
	); err != nil {
		return nil, err
	}
	alert.CourseIDs = courseIDs
	return alert, nil
}
