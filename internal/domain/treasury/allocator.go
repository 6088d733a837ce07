package treasury

import (
	"time"

	"github.com/google/uuid"
	"github.com/logia/portal/internal/domain/shared/strategy"
	"github.com/logia/portal/internal/domain/shared/valueobject"
)

// ChargeStatus is the settlement state of a single charge
type ChargeStatus string

const (
	ChargeStatusPaid    ChargeStatus = "PAID"
	ChargeStatusPartial ChargeStatus = "PARTIAL"
	ChargeStatusUnpaid  ChargeStatus = "UNPAID"
)

// String returns the string representation
func (s ChargeStatus) String() string {
	return string(s)
}

// FundingSource records how much one payment contributed to one charge
type FundingSource struct {
	PaymentID   uuid.UUID
	PaymentDate time.Time
	AmountDrawn valueobject.Money
}

// AllocationResult is the settlement outcome for one charge
type AllocationResult struct {
	Charge          Charge
	Status          ChargeStatus
	AmountCovered   valueobject.Money
	AmountRemaining valueobject.Money
	FundingSources  []FundingSource
}

// Reconciliation is the full output of an allocation pass
type Reconciliation struct {
	Results           []AllocationResult
	UnallocatedCredit valueobject.Money
}

// Allocator matches payments against charges
type Allocator interface {
	strategy.Strategy
	// Reconcile allocates payments to charges. Both sequences must already be
	// validated and in recording order.
	Reconcile(charges []Charge, payments []Payment) Reconciliation
}

// FIFOAllocator draws each charge down from the oldest payment that still has
// balance, walking both sequences once in recording order.
type FIFOAllocator struct {
	strategy.BaseStrategy
	currency valueobject.Currency
}

// NewFIFOAllocator creates the FIFO allocator for the given currency
func NewFIFOAllocator(currency valueobject.Currency) *FIFOAllocator {
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	return &FIFOAllocator{
		BaseStrategy: strategy.NewBaseStrategy(
			"fifo_recording_order",
			strategy.StrategyTypeAllocation,
			"FIFO allocation - each charge is funded by the earliest recorded payment with remaining balance",
		),
		currency: currency,
	}
}

// Reconcile runs the draw-down. It never re-sorts its inputs.
func (a *FIFOAllocator) Reconcile(charges []Charge, payments []Payment) Reconciliation {
	zero := valueobject.Zero(a.currency)
	results := make([]AllocationResult, 0, len(charges))

	cursor := 0
	remaining := zero
	if len(payments) > 0 {
		remaining = payments[0].Amount
	}

	for _, charge := range charges {
		needed := charge.Amount
		covered := zero
		sources := make([]FundingSource, 0)

		for needed.IsPositive() && cursor < len(payments) {
			if !remaining.IsPositive() {
				cursor++
				if cursor < len(payments) {
					remaining = payments[cursor].Amount
				}
				continue
			}

			drawn := needed.Min(remaining)
			sources = append(sources, FundingSource{
				PaymentID:   payments[cursor].ID,
				PaymentDate: payments[cursor].Date,
				AmountDrawn: drawn,
			})
			covered = covered.MustAdd(drawn)
			needed = needed.MustSubtract(drawn)
			remaining = remaining.MustSubtract(drawn)
		}

		results = append(results, AllocationResult{
			Charge:          charge,
			Status:          statusFor(needed, covered),
			AmountCovered:   covered,
			AmountRemaining: needed,
			FundingSources:  sources,
		})
	}

	credit := zero
	if cursor < len(payments) {
		credit = credit.MustAdd(remaining)
		for _, p := range payments[cursor+1:] {
			credit = credit.MustAdd(p.Amount)
		}
	}

	return Reconciliation{
		Results:           results,
		UnallocatedCredit: credit,
	}
}

func statusFor(needed, covered valueobject.Money) ChargeStatus {
	switch {
	case !needed.IsPositive():
		return ChargeStatusPaid
	case covered.IsPositive():
		return ChargeStatusPartial
	default:
		return ChargeStatusUnpaid
	}
}
