package repositories

import (
	"context"

	"github.com/teewatch/teewatch/internal/domain/entities"
)

// CourseRepository defines the interface for course catalog operations.
type CourseRepository interface {
	// List returns all catalog courses ordered by name.
	List(ctx context.Context) ([]*entities.Course, error)

	// GetByID returns one course or a NOT_FOUND error.
	GetByID(ctx context.Context, id int64) (*entities.Course, error)
}
