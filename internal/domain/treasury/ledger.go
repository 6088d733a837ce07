package treasury

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/logia/portal/internal/domain/shared"
	"github.com/logia/portal/internal/domain/shared/valueobject"
)

// Ledger is one member's charges and payments, each kept in recording order
type Ledger struct {
	memberID uuid.UUID
	currency valueobject.Currency
	charges  []Charge
	payments []Payment
}

// NewLedger partitions validated entries by kind. Entries must already be in
// recording order; any entry belonging to another member, or failing
// validation, rejects the whole ledger.
func NewLedger(memberID uuid.UUID, currency valueobject.Currency, entries []LedgerEntry) (*Ledger, error) {
	if memberID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Member ID is required")
	}
	l := &Ledger{
		memberID: memberID,
		currency: currency,
		charges:  make([]Charge, 0),
		payments: make([]Payment, 0),
	}
	for i, e := range entries {
		if e.MemberID != memberID {
			return nil, shared.NewDomainError("INVALID_INPUT",
				fmt.Sprintf("Entry %d belongs to member %s, not %s", i, e.MemberID, memberID))
		}
		if err := e.Validate(); err != nil {
			return nil, err
		}
		if e.Amount.Currency() != currency {
			return nil, shared.NewDomainError("INVALID_AMOUNT",
				fmt.Sprintf("Entry %d is in %s, ledger is in %s", i, e.Amount.Currency(), currency))
		}
		switch e.Kind {
		case EntryKindCharge:
			l.charges = append(l.charges, Charge{LedgerEntry: e})
		case EntryKindPayment:
			l.payments = append(l.payments, Payment{LedgerEntry: e})
		}
	}
	return l, nil
}

// MemberID returns the owner of the ledger
func (l *Ledger) MemberID() uuid.UUID { return l.memberID }

// Charges returns the charges in recording order
func (l *Ledger) Charges() []Charge { return l.charges }

// Payments returns the payments in recording order
func (l *Ledger) Payments() []Payment { return l.payments }

// Statement is everything a member account view needs
type Statement struct {
	MemberID        uuid.UUID
	Results         []AllocationResult
	Summary         LedgerSummary
	ApproxDuesOwed  int64
	OutOfOrderDates bool
}

// Statement runs the allocator and the summary over this ledger
func (l *Ledger) Statement(allocator Allocator, duesAmount valueobject.Money) (*Statement, error) {
	rec := allocator.Reconcile(l.charges, l.payments)
	summary, err := Summarize(l.currency, l.charges, l.payments, rec)
	if err != nil {
		return nil, err
	}
	return &Statement{
		MemberID:        l.memberID,
		Results:         rec.Results,
		Summary:         summary,
		ApproxDuesOwed:  ApproxDuesOwed(summary.NetBalance, duesAmount),
		OutOfOrderDates: l.outOfOrder(),
	}, nil
}

// outOfOrder reports whether recording order disagrees with date order for
// either kind. Allocation still follows recording order.
func (l *Ledger) outOfOrder() bool {
	for i := 1; i < len(l.charges); i++ {
		if l.charges[i].Date.Before(l.charges[i-1].Date) {
			return true
		}
	}
	for i := 1; i < len(l.payments); i++ {
		if l.payments[i].Date.Before(l.payments[i-1].Date) {
			return true
		}
	}
	return false
}
