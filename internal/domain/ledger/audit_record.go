package ledger

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"reflect"

	"github.com/fitmanager/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AuditAction represents the kind of mutation an audit record documents
type AuditAction string

const (
	AuditActionCreate  AuditAction = "CREATE"
	AuditActionUpdate  AuditAction = "UPDATE"
	AuditActionDelete  AuditAction = "DELETE"
	AuditActionRestore AuditAction = "RESTORE"
)

// IsValid checks if the action is a valid AuditAction
func (a AuditAction) IsValid() bool {
	switch a {
	case AuditActionCreate, AuditActionUpdate, AuditActionDelete, AuditActionRestore:
		return true
	}
	return false
}

// ChangeSet is the structured before/after diff attached to UPDATE records.
// It is stored as JSONB.
type ChangeSet struct {
	Before map[string]any `json:"before,omitempty"`
	After  map[string]any `json:"after,omitempty"`
}

// Value implements driver.Valuer for JSONB storage
func (c ChangeSet) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements sql.Scanner for JSONB storage
func (c *ChangeSet) Scan(value interface{}) error {
	if value == nil {
		*c = ChangeSet{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan ChangeSet: unsupported type")
	}

	if len(bytes) == 0 {
		*c = ChangeSet{}
		return nil
	}

	return json.Unmarshal(bytes, c)
}

// IsEmpty returns true if the change set carries no diff
func (c ChangeSet) IsEmpty() bool {
	return len(c.Before) == 0 && len(c.After) == 0
}

// Diff builds a ChangeSet from two field snapshots, keeping only the keys
// whose values actually differ.
func Diff(before, after map[string]any) ChangeSet {
	cs := ChangeSet{
		Before: make(map[string]any),
		After:  make(map[string]any),
	}
	for key, newVal := range after {
		oldVal, existed := before[key]
		if !existed || !reflect.DeepEqual(oldVal, newVal) {
			if existed {
				cs.Before[key] = oldVal
			}
			cs.After[key] = newVal
		}
	}
	for key, oldVal := range before {
		if _, stillThere := after[key]; !stillThere {
			cs.Before[key] = oldVal
		}
	}
	return cs
}

// AuditRecord documents one mutation: who changed what, and how.
// Records are append-only, immutable once written, and inserted in the
// same transaction as the mutation they document. Business logic never
// reads them back; only reporting collaborators do.
type AuditRecord struct {
	shared.BaseEntity
	TenantID   uuid.UUID   `json:"tenant_id"`
	EntityType string      `json:"entity_type"`
	EntityID   uuid.UUID   `json:"entity_id"`
	Action     AuditAction `json:"action"`
	Changes    ChangeSet   `json:"changes,omitempty"`
	Actor      uuid.UUID   `json:"actor"`
}

// NewAuditRecord creates a new audit record
func NewAuditRecord(
	tenantID uuid.UUID,
	entityType string,
	entityID uuid.UUID,
	action AuditAction,
	actor uuid.UUID,
	changes ChangeSet,
) (*AuditRecord, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if entityType == "" {
		return nil, shared.NewDomainError("INVALID_ENTITY_TYPE", "Entity type cannot be empty")
	}
	if entityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ENTITY_ID", "Entity ID cannot be empty")
	}
	if !action.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACTION", "Invalid audit action")
	}

	return &AuditRecord{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Changes:    changes,
		Actor:      actor,
	}, nil
}

// Audited entity type names
const (
	EntityTypeClient           = "client"
	EntityTypeContract         = "contract"
	EntityTypeInstallment      = "installment"
	EntityTypeLedgerEntry      = "ledger_entry"
	EntityTypeRecurringExpense = "recurring_expense"
)
