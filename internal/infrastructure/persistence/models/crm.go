package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/fitmanager/backend/internal/domain/crm"
)

// ClientModel is the persistence model for the Client domain entity.
type ClientModel struct {
	TenantAggregateModel
	FirstName string         `gorm:"type:varchar(100);not null"`
	LastName  string         `gorm:"type:varchar(100);not null"`
	Email     string         `gorm:"type:varchar(200);index"`
	Phone     string         `gorm:"type:varchar(50)"`
	BirthDate *time.Time     `gorm:"type:date"`
	Notes     string         `gorm:"type:text"`
	Active    bool           `gorm:"not null;default:true"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client entity.
func (m *ClientModel) ToDomain() *crm.Client {
	c := &crm.Client{
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Email:     m.Email,
		Phone:     m.Phone,
		BirthDate: m.BirthDate,
		Notes:     m.Notes,
		Active:    m.Active,
		DeletedAt: deletedAtPtr(m.DeletedAt),
	}
	m.PopulateTenantAggregateRoot(&c.TenantAggregateRoot)
	return c
}

// FromDomain populates the persistence model from a domain Client entity.
func (m *ClientModel) FromDomain(c *crm.Client) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.FirstName = c.FirstName
	m.LastName = c.LastName
	m.Email = c.Email
	m.Phone = c.Phone
	m.BirthDate = c.BirthDate
	m.Notes = c.Notes
	m.Active = c.Active
	m.DeletedAt = deletedAtValue(c.DeletedAt)
}

// ClientModelFromDomain creates a new persistence model from a domain Client entity.
func ClientModelFromDomain(c *crm.Client) *ClientModel {
	m := &ClientModel{}
	m.FromDomain(c)
	return m
}

func deletedAtPtr(d gorm.DeletedAt) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}

func deletedAtValue(t *time.Time) gorm.DeletedAt {
	if t == nil {
		return gorm.DeletedAt{}
	}
	return gorm.DeletedAt{Time: *t, Valid: true}
}
