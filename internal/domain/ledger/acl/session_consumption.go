// Package acl isolates the ledger bounded context from the training-session
// context. Credit-based contracts auto-close when their credits are consumed,
// which requires counting completed sessions, but the ledger domain must not
// depend on session aggregates directly. This port is implemented in the
// infrastructure layer.
package acl

import (
	"context"

	"github.com/google/uuid"
)

// CreditConsumption answers how many session credits a contract has used up.
// A credit counts as consumed when the session was held or the client failed
// to show; cancelled and scheduled sessions do not consume credits.
type CreditConsumption interface {
	ConsumedCredits(ctx context.Context, tenantID, contractID uuid.UUID) (int, error)
}
