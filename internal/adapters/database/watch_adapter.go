package database

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/teewatch/teewatch/internal/domain/entities"
	"github.com/teewatch/teewatch/internal/domain/repositories"
	"github.com/teewatch/teewatch/internal/infrastructure/clients/postgres"
	apperrors "github.com/teewatch/teewatch/pkg/errors"
)

// WatchAdapter implements watched tee time persistence in Postgres.
// A watch is keyed by the slot detail URL plus the watching user's email.
type WatchAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewWatchAdapter creates a new watch adapter.
func NewWatchAdapter(client *postgres.Client) repositories.WatchRepository {
	return &WatchAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Exists reports whether the user already watches the given slot URL.
func (a *WatchAdapter) Exists(ctx context.Context, url, userEmail string) (bool, error) {
	query, args, err := a.db.From("tee_times").
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"url": url, "user_email": userEmail}).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build watch exists query", err)
	}

	var count int64
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, apperrors.NewInternalError("failed to check watch existence", err)
	}

	return count > 0, nil
}

// Create inserts a new watch entry.
func (a *WatchAdapter) Create(ctx context.Context, watch *entities.WatchEntry) error {
	if watch.CreatedAt.IsZero() {
		watch.CreatedAt = time.Now().UTC()
	}

	record := goqu.Record{
		"user_email": watch.UserEmail,
		"url":        watch.URL,
		"tee_time":   watch.TeeTime,
		"notified":   watch.Notified,
		"created_at": watch.CreatedAt,
	}

	query, args, err := a.db.Insert("tee_times").Rows(record).Returning("id").ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build watch insert query", err)
	}

	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&watch.ID); err != nil {
		return apperrors.NewInternalError("failed to create watch", err)
	}

	return nil
}

// Delete removes the user's watch on the given slot URL.
func (a *WatchAdapter) Delete(ctx context.Context, url, userEmail string) error {
	query, args, err := a.db.Delete("tee_times").
		Where(goqu.Ex{"url": url, "user_email": userEmail}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build watch delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete watch", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.NewNotFoundError("watch not found")
	}

	return nil
}

// ListByUser returns the user's watches, soonest tee time first.
func (a *WatchAdapter) ListByUser(ctx context.Context, userEmail string) ([]*entities.WatchEntry, error) {
	ds := a.db.From("tee_times").
		Select(watchColumns()...).
		Where(goqu.Ex{"user_email": userEmail}).
		Order(goqu.I("tee_time").Asc())

	return a.listWatches(ctx, ds)
}

// ListUnnotified returns watches not yet notified whose tee time is at
// or after the cutoff, for the watcher worker.
func (a *WatchAdapter) ListUnnotified(ctx context.Context, cutoff time.Time) ([]*entities.WatchEntry, error) {
	ds := a.db.From("tee_times").
		Select(watchColumns()...).
		Where(
			goqu.Ex{"notified": false},
			goqu.I("tee_time").Gte(cutoff),
		).
		Order(goqu.I("tee_time").Asc())

	return a.listWatches(ctx, ds)
}

// MarkNotified flags a watch so the worker does not alert twice.
func (a *WatchAdapter) MarkNotified(ctx context.Context, id int64) error {
	query, args, err := a.db.Update("tee_times").
		Set(goqu.Record{"notified": true}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build watch update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to mark watch notified", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.NewNotFoundError("watch not found")
	}

	return nil
}

func (a *WatchAdapter) listWatches(ctx context.Context, ds *goqu.SelectDataset) ([]*entities.WatchEntry, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build watch list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list watches", err)
	}
	defer rows.Close()

	var watches []*entities.WatchEntry
	for rows.Next() {
		watch := &entities.WatchEntry{}
		if err := rows.Scan(
			&watch.ID,
			&watch.UserEmail,
			&watch.URL,
			&watch.TeeTime,
			&watch.Notified,
			&watch.CreatedAt,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan watch row", err)
		}
		watches = append(watches, watch)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read watch rows", err)
	}

	return watches, nil
}

func watchColumns() []interface{} {
	return []interface{}{
		"id", "user_email", "url", "tee_time", "notified", "created_at",
	}
}
