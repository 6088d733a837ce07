package treasury

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/logia/portal/internal/domain/shared"
	"github.com/logia/portal/internal/domain/shared/valueobject"
)

// EntryKind distinguishes debts from credits on a member ledger
type EntryKind string

const (
	EntryKindCharge  EntryKind = "CHARGE"
	EntryKindPayment EntryKind = "PAYMENT"
)

// IsValid checks if the kind is known
func (k EntryKind) IsValid() bool {
	return k == EntryKindCharge || k == EntryKindPayment
}

// String returns the string representation
func (k EntryKind) String() string {
	return string(k)
}

// LedgerEntry is one recorded movement on a member's account.
// Sequence is the recording order within the member's ledger and is the only
// order the allocator honours.
type LedgerEntry struct {
	shared.BaseEntity
	MemberID uuid.UUID
	Sequence int64
	Date     time.Time
	Label    string
	Amount   valueobject.Money
	Kind     EntryKind
}

// Validate enforces the input contract every entry must meet before allocation
func (e LedgerEntry) Validate() error {
	if e.MemberID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Ledger entry has no member")
	}
	if !e.Kind.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown ledger entry kind %q", e.Kind))
	}
	if e.Date.IsZero() {
		return shared.NewDomainError("INVALID_INPUT", "Ledger entry date is missing")
	}
	if e.Amount.Currency() == "" {
		return shared.NewDomainError("INVALID_AMOUNT", "Ledger entry amount has no currency")
	}
	if e.Amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", fmt.Sprintf("Ledger entry amount %s is negative", e.Amount))
	}
	return nil
}

// Charge is a debt owed by a member
type Charge struct {
	LedgerEntry
}

// Payment is a credit made by a member
type Payment struct {
	LedgerEntry
}

// NewCharge creates a validated charge
func NewCharge(memberID uuid.UUID, date time.Time, label string, amount valueobject.Money) (Charge, error) {
	e, err := newEntry(memberID, date, label, amount, EntryKindCharge)
	if err != nil {
		return Charge{}, err
	}
	return Charge{LedgerEntry: e}, nil
}

// NewPayment creates a validated payment
func NewPayment(memberID uuid.UUID, date time.Time, label string, amount valueobject.Money) (Payment, error) {
	e, err := newEntry(memberID, date, label, amount, EntryKindPayment)
	if err != nil {
		return Payment{}, err
	}
	return Payment{LedgerEntry: e}, nil
}

func newEntry(memberID uuid.UUID, date time.Time, label string, amount valueobject.Money, kind EntryKind) (LedgerEntry, error) {
	e := LedgerEntry{
		BaseEntity: shared.NewBaseEntity(),
		MemberID:   memberID,
		Date:       truncateDay(date),
		Label:      strings.TrimSpace(label),
		Amount:     amount,
		Kind:       kind,
	}
	if err := e.Validate(); err != nil {
		return LedgerEntry{}, err
	}
	return e, nil
}

func truncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
