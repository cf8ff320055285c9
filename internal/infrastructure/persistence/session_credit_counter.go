package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fitmanager/backend/internal/domain/ledger/acl"
	"github.com/fitmanager/backend/internal/infrastructure/persistence/models"
)

// GormSessionCreditCounter implements acl.CreditConsumption by counting
// training sessions that consumed a contract credit. Completed sessions and
// no-shows count; scheduled and cancelled sessions do not.
type GormSessionCreditCounter struct {
	db *gorm.DB
}

// NewGormSessionCreditCounter creates a new GormSessionCreditCounter
func NewGormSessionCreditCounter(db *gorm.DB) *GormSessionCreditCounter {
	return &GormSessionCreditCounter{db: db}
}

// ConsumedCredits counts the credits a contract has used up
func (c *GormSessionCreditCounter) ConsumedCredits(ctx context.Context, tenantID, contractID uuid.UUID) (int, error) {
	var count int64
	if err := c.db.WithContext(ctx).Model(&models.TrainingSessionModel{}).
		Where("tenant_id = ? AND contract_id = ? AND status IN ?",
			tenantID, contractID, []string{models.SessionStatusCompleted, models.SessionStatusNoShow}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

var _ acl.CreditConsumption = (*GormSessionCreditCounter)(nil)
