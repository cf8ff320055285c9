package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is empty or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ClientSortFields contains allowed sort fields for clients
var ClientSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"first_name": true,
	"last_name":  true,
	"email":      true,
	"active":     true,
}

// ContractSortFields contains allowed sort fields for contracts
var ContractSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"title":           true,
	"price_total":     true,
	"total_collected": true,
	"payment_status":  true,
	"closed":          true,
	"start_date":      true,
	"end_date":        true,
}

// InstallmentSortFields contains allowed sort fields for installments
var InstallmentSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"due_date":    true,
	"amount_due":  true,
	"amount_paid": true,
	"status":      true,
}

// LedgerEntrySortFields contains allowed sort fields for ledger entries
var LedgerEntrySortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"direction":      true,
	"amount":         true,
	"effective_date": true,
	"category":       true,
	"origin":         true,
}

// RecurringExpenseSortFields contains allowed sort fields for recurring expenses
var RecurringExpenseSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"amount":     true,
	"frequency":  true,
	"due_day":    true,
	"start_date": true,
	"active":     true,
}

// AuditRecordSortFields contains allowed sort fields for audit records
var AuditRecordSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"entity_type": true,
	"action":      true,
}
