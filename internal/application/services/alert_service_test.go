package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teewatch/teewatch/internal/domain/entities"
	apperrors "github.com/teewatch/teewatch/pkg/errors"
)

func validRule() *entities.AlertRule {
	return &entities.AlertRule{
		CourseIDs: []int64{7},
		AlertDate: time.Now().Add(48 * time.Hour),
		StartTime: "06:00",
		EndTime:   "10:00",
		Players:   2,
	}
}

func alertFixture() (*AlertService, *memoryAlertRepo) {
	alerts := &memoryAlertRepo{}
	courses := &memoryCourseRepo{courses: map[int64]*entities.Course{
		7: {ID: 7, Name: "Seattle"},
	}}
	return NewAlertService(alerts, courses), alerts
}

func TestAlertService_Create(t *testing.T) {
	t.Run("stores a valid rule as active", func(t *testing.T) {
		svc, repo := alertFixture()

		created, err := svc.Create(context.Background(), "user-1", validRule())
		require.NoError(t, err)
		assert.True(t, created.IsActive)
		assert.Equal(t, "user-1", created.UserID)
		assert.Len(t, repo.rules, 1)
	})

	t.Run("requires a signed-in user", func(t *testing.T) {
		svc, _ := alertFixture()
		_, err := svc.Create(context.Background(), "", validRule())
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeAuthRequired))
	})

	t.Run("rejects an empty course set", func(t *testing.T) {
		svc, _ := alertFixture()
		rule := validRule()
		rule.CourseIDs = nil
		_, err := svc.Create(context.Background(), "user-1", rule)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("rejects an inverted time window", func(t *testing.T) {
		svc, _ := alertFixture()
		rule := validRule()
		rule.StartTime, rule.EndTime = "11:00", "09:00"
		_, err := svc.Create(context.Background(), "user-1", rule)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("rejects unknown courses", func(t *testing.T) {
		svc, _ := alertFixture()
		rule := validRule()
		rule.CourseIDs = []int64{999}
		_, err := svc.Create(context.Background(), "user-1", rule)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("rejects a past date", func(t *testing.T) {
		svc, _ := alertFixture()
		rule := validRule()
		rule.AlertDate = time.Now().Add(-48 * time.Hour)
		_, err := svc.Create(context.Background(), "user-1", rule)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})
}

func TestAlertService_Ownership(t *testing.T) {
	svc, repo := alertFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", validRule())
	require.NoError(t, err)

	t.Run("another user cannot toggle the rule", func(t *testing.T) {
		err := svc.SetActive(ctx, "user-2", created.ID, false)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
		assert.True(t, repo.rules[0].IsActive)
	})

	t.Run("owner can toggle and delete", func(t *testing.T) {
		require.NoError(t, svc.SetActive(ctx, "user-1", created.ID, false))
		assert.False(t, repo.rules[0].IsActive)

		require.NoError(t, svc.Delete(ctx, "user-1", created.ID))
		assert.Empty(t, repo.rules)
	})
}
