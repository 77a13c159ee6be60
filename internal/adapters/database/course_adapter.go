package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	"github.com/teewatch/teewatch/internal/domain/entities"
	"github.com/teewatch/teewatch/internal/domain/repositories"
	"github.com/teewatch/teewatch/internal/infrastructure/clients/postgres"
	apperrors "github.com/teewatch/teewatch/pkg/errors"
)

// CourseAdapter implements the course catalog in Postgres.
type CourseAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewCourseAdapter creates a new course adapter.
func NewCourseAdapter(client *postgres.Client) repositories.CourseRepository {
	return &CourseAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// List returns all catalog courses ordered by name.
func (a *CourseAdapter) List(ctx context.Context) ([]*entities.Course, error) {
	query, args, err := a.db.From("courses").
		Select("id", "name").
		Order(goqu.I("name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build course list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list courses", err)
	}
	defer rows.Close()

	var courses []*entities.Course
	for rows.Next() {
		course := &entities.Course{}
		if err := rows.Scan(&course.ID, &course.Name); err != nil {
			return nil, apperrors.NewInternalError("failed to scan course row", err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read course rows", err)
	}

	return courses, nil
}

// GetByID returns one course or a NOT_FOUND error.
func (a *CourseAdapter) GetByID(ctx context.Context, id int64) (*entities.Course, error) {
	query, args, err := a.db.From("courses").
		Select("id", "name").
		Where(goqu.Ex{"id": id}).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build course query", err)
	}

	course := &entities.Course{}
	row := a.client.DB().QueryRowContext(ctx, query, args...)
	if err := row.Scan(&course.ID, &course.Name); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFoundError("course not found")
		}
		return nil, apperrors.NewInternalError("failed to get course", err)
	}

	return course, nil
}
