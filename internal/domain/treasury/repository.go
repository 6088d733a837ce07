package treasury

import (
	"context"

	"github.com/google/uuid"
)

// LedgerRepository persists ledger entries
type LedgerRepository interface {
	// FindByMember returns a member's entries ordered by recording sequence
	FindByMember(ctx context.Context, memberID uuid.UUID) ([]LedgerEntry, error)
	// FindAll returns every entry grouped by member, each group in recording order
	FindAll(ctx context.Context) (map[uuid.UUID][]LedgerEntry, error)
	// Append assigns the next sequence per member and stores the entries
	Append(ctx context.Context, entries ...*LedgerEntry) error
}
