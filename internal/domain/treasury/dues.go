package treasury

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/logia/portal/internal/domain/shared"
	"github.com/logia/portal/internal/domain/shared/valueobject"
)

// DefaultDuesAmount is the monthly per-capita charge
var DefaultDuesAmount = valueobject.MustMoney("450.00")

// DuesRun is a batch of monthly per-capita charges
type DuesRun struct {
	Period string
	Date   time.Time
	Amount valueobject.Money
}

// NewDuesRun validates a dues run definition
func NewDuesRun(period string, date time.Time, amount valueobject.Money) (*DuesRun, error) {
	period = strings.TrimSpace(period)
	if period == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Dues period is required")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Dues date is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Dues amount must be positive")
	}
	return &DuesRun{Period: period, Date: date, Amount: amount}, nil
}

// Label is the concept written on every charge of the run
func (r *DuesRun) Label() string {
	return fmt.Sprintf("Dues %s", r.Period)
}

// ChargesFor builds one charge per member
func (r *DuesRun) ChargesFor(memberIDs []uuid.UUID) ([]Charge, error) {
	charges := make([]Charge, 0, len(memberIDs))
	for _, id := range memberIDs {
		c, err := NewCharge(id, r.Date, r.Label(), r.Amount)
		if err != nil {
			return nil, err
		}
		charges = append(charges, c)
	}
	return charges, nil
}

// ApproxDuesOwed is how many whole dues installments a positive balance covers
func ApproxDuesOwed(netBalance, duesAmount valueobject.Money) int64 {
	if !netBalance.IsPositive() || !duesAmount.IsPositive() {
		return 0
	}
	return netBalance.Amount().Div(duesAmount.Amount()).IntPart()
}
