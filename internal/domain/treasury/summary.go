package treasury

import (
	"fmt"

	"github.com/logia/portal/internal/domain/shared"
	"github.com/logia/portal/internal/domain/shared/valueobject"
)

// LedgerSummary holds the headline figures of a member's account
type LedgerSummary struct {
	TotalCharged      valueobject.Money
	TotalPaid         valueobject.Money
	NetBalance        valueobject.Money
	UnallocatedCredit valueobject.Money
}

// InCredit reports whether the member owes nothing
func (s LedgerSummary) InCredit() bool {
	return !s.NetBalance.IsPositive()
}

// Summarize computes totals from the raw sequences and cross-checks them
// against the allocation. The totals never depend on allocation output.
func Summarize(currency valueobject.Currency, charges []Charge, payments []Payment, rec Reconciliation) (LedgerSummary, error) {
	totalCharged := valueobject.Zero(currency)
	for _, c := range charges {
		totalCharged = totalCharged.MustAdd(c.Amount)
	}
	totalPaid := valueobject.Zero(currency)
	for _, p := range payments {
		totalPaid = totalPaid.MustAdd(p.Amount)
	}

	summary := LedgerSummary{
		TotalCharged:      totalCharged,
		TotalPaid:         totalPaid,
		NetBalance:        totalCharged.MustSubtract(totalPaid),
		UnallocatedCredit: rec.UnallocatedCredit,
	}

	outstanding := valueobject.Zero(currency)
	for _, r := range rec.Results {
		outstanding = outstanding.MustAdd(r.AmountRemaining)
	}
	if expected := outstanding.MustSubtract(rec.UnallocatedCredit); !expected.Equals(summary.NetBalance) {
		return summary, shared.NewDomainError("LEDGER_INCONSISTENT",
			fmt.Sprintf("net balance %s does not match outstanding %s less credit %s",
				summary.NetBalance, outstanding, rec.UnallocatedCredit))
	}
	return summary, nil
}
