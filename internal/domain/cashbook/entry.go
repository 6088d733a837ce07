package cashbook

import (
	"fmt"
	"strings"
	"time"

	"github.com/logia/portal/internal/domain/shared"
	"github.com/logia/portal/internal/domain/shared/valueobject"
)

// Category classifies a cash movement
type Category string

const (
	CategoryIncome     Category = "INCOME"
	CategoryOperating  Category = "OPERATING"
	CategoryGrandLodge Category = "GRAND_LODGE"
	CategoryEvent      Category = "EVENT"
)

// IsValid checks if the category is known
func (c Category) IsValid() bool {
	switch c {
	case CategoryIncome, CategoryOperating, CategoryGrandLodge, CategoryEvent:
		return true
	}
	return false
}

// IsExpense reports whether the category is an outflow
func (c Category) IsExpense() bool {
	return c.IsValid() && c != CategoryIncome
}

// Entry is one line of the lodge cash book
type Entry struct {
	shared.BaseEntity
	Date      time.Time
	Concept   string
	Category  Category
	In        valueobject.Money
	Out       valueobject.Money
	Reference string
}

// NewIncome records money received
func NewIncome(date time.Time, concept string, amount valueobject.Money, reference string) (*Entry, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Income must be positive")
	}
	return newEntry(date, concept, CategoryIncome, amount, valueobject.Zero(amount.Currency()), reference)
}

// NewExpense records money spent
func NewExpense(date time.Time, concept string, category Category, amount valueobject.Money) (*Entry, error) {
	if !category.IsExpense() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Expense category must be OPERATING, GRAND_LODGE or EVENT")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Expense must be positive")
	}
	return newEntry(date, concept, category, valueobject.Zero(amount.Currency()), amount, "")
}

func newEntry(date time.Time, concept string, category Category, in, out valueobject.Money, reference string) (*Entry, error) {
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Date is required")
	}
	concept = strings.TrimSpace(concept)
	if concept == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Concept is required")
	}
	return &Entry{
		BaseEntity: shared.NewBaseEntity(),
		Date:       date,
		Concept:    concept,
		Category:   category,
		In:         in,
		Out:        out,
		Reference:  reference,
	}, nil
}

// Totals is the money in, money out and balance of a set of entries
type Totals struct {
	In      valueobject.Money
	Out     valueobject.Money
	Balance valueobject.Money
}

// Summarize totals the given entries. An entry in another currency rejects
// the whole set.
func Summarize(currency valueobject.Currency, entries []Entry) (Totals, error) {
	t := Totals{In: valueobject.Zero(currency), Out: valueobject.Zero(currency)}
	for i, e := range entries {
		in, errIn := t.In.Add(e.In)
		out, errOut := t.Out.Add(e.Out)
		if errIn != nil || errOut != nil {
			return Totals{}, shared.NewDomainError("INVALID_AMOUNT",
				fmt.Sprintf("Cash book entry %d is in %s, book is in %s", i, e.In.Currency(), currency))
		}
		t.In, t.Out = in, out
	}
	balance, err := t.In.Subtract(t.Out)
	if err != nil {
		return Totals{}, err
	}
	t.Balance = balance
	return t, nil
}

// Balance is money in less money out across the given entries
func Balance(currency valueobject.Currency, entries []Entry) (valueobject.Money, error) {
	t, err := Summarize(currency, entries)
	if err != nil {
		return valueobject.Money{}, err
	}
	return t.Balance, nil
}
