package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fitmanager/backend/internal/infrastructure/persistence/models"
)

func setupSessionTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.TrainingSessionModel{})
	require.NoError(t, err)

	return db
}

func seedSession(t *testing.T, db *gorm.DB, tenantID, contractID uuid.UUID, status string) {
	t.Helper()

	session := &models.TrainingSessionModel{
		TenantID:    tenantID,
		ClientID:    uuid.New(),
		ContractID:  &contractID,
		Status:      status,
		ScheduledAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	session.ID = uuid.New()
	require.NoError(t, db.Create(session).Error)
}

func TestGormSessionCreditCounter_ConsumedCredits(t *testing.T) {
	t.Run("counts completed and no-show sessions only", func(t *testing.T) {
		db := setupSessionTestDB(t)
		counter := NewGormSessionCreditCounter(db)

		tenantID := uuid.New()
		contractID := uuid.New()

		seedSession(t, db, tenantID, contractID, models.SessionStatusCompleted)
		seedSession(t, db, tenantID, contractID, models.SessionStatusNoShow)
		seedSession(t, db, tenantID, contractID, models.SessionStatusScheduled)
		seedSession(t, db, tenantID, contractID, models.SessionStatusCancelled)

		consumed, err := counter.ConsumedCredits(context.Background(), tenantID, contractID)

		assert.NoError(t, err)
		assert.Equal(t, 2, consumed)
	})

	t.Run("ignores sessions of other contracts and tenants", func(t *testing.T) {
		db := setupSessionTestDB(t)
		counter := NewGormSessionCreditCounter(db)

		tenantID := uuid.New()
		contractID := uuid.New()

		seedSession(t, db, tenantID, contractID, models.SessionStatusCompleted)
		seedSession(t, db, tenantID, uuid.New(), models.SessionStatusCompleted)
		seedSession(t, db, uuid.New(), contractID, models.SessionStatusCompleted)

		consumed, err := counter.ConsumedCredits(context.Background(), tenantID, contractID)

		assert.NoError(t, err)
		assert.Equal(t, 1, consumed)
	})

	t.Run("returns zero when no sessions exist", func(t *testing.T) {
		db := setupSessionTestDB(t)
		counter := NewGormSessionCreditCounter(db)

		consumed, err := counter.ConsumedCredits(context.Background(), uuid.New(), uuid.New())

		assert.NoError(t, err)
		assert.Equal(t, 0, consumed)
	})
}
