package treasury

import (
	"time"

	"github.com/google/uuid"
	"github.com/logia/portal/internal/domain/cashbook"
	"github.com/logia/portal/internal/domain/shared/valueobject"
	"github.com/logia/portal/internal/domain/treasury"
	"github.com/shopspring/decimal"
)

// StatementResult is a member's reconciled account
type StatementResult struct {
	MemberID          uuid.UUID
	MemberNumber      int
	MemberName        string
	Lines             []StatementLine
	TotalCharged      valueobject.Money
	TotalPaid         valueobject.Money
	NetBalance        valueobject.Money
	UnallocatedCredit valueobject.Money
	InCredit          bool
	ApproxDuesOwed    int64
	OutOfOrderDates   bool
}

// StatementLine is one charge and how it was funded
type StatementLine struct {
	ChargeID        uuid.UUID
	Date            time.Time
	Label           string
	Amount          valueobject.Money
	Status          treasury.ChargeStatus
	AmountCovered   valueobject.Money
	AmountRemaining valueobject.Money
	FundingSources  []treasury.FundingSource
}

// PaymentLine is a recorded payment
type PaymentLine struct {
	ID       uuid.UUID
	Sequence int64
	Date     time.Time
	Label    string
	Amount   valueobject.Money
}

// DebtLine is one member's balance in the debt report
type DebtLine struct {
	MemberID       uuid.UUID
	MemberNumber   int
	MemberName     string
	Active         bool
	NetBalance     valueobject.Money
	ApproxDuesOwed int64
}

// DebtReport lists every member with ledger activity
type DebtReport struct {
	Lines     []DebtLine
	TotalOwed valueobject.Money
}

// RunDuesInput selects who is charged for a period. Empty MemberIDs means
// every active member; a nil Amount uses the configured dues.
type RunDuesInput struct {
	Period    string
	Date      time.Time
	MemberIDs []uuid.UUID
	Amount    *decimal.Decimal
}

// RunDuesResult reports what a dues run wrote
type RunDuesResult struct {
	Label   string
	Amount  valueobject.Money
	Charged []uuid.UUID
	Skipped []uuid.UUID
}

// RecordPaymentInput records money received from a member
type RecordPaymentInput struct {
	MemberID uuid.UUID
	Date     time.Time
	Amount   decimal.Decimal
	Concept  string
}

// RecordPaymentResult is the written ledger payment and its cash book line
type RecordPaymentResult struct {
	Payment         PaymentLine
	CashBookEntryID uuid.UUID
}

// RecordExpenseInput records money spent by the lodge
type RecordExpenseInput struct {
	Date     time.Time
	Concept  string
	Category cashbook.Category
	Amount   decimal.Decimal
}

// CashBookLine is one cash book entry
type CashBookLine struct {
	ID        uuid.UUID
	Date      time.Time
	Concept   string
	Category  cashbook.Category
	In        valueobject.Money
	Out       valueobject.Money
	Reference string
}

// CashBalanceResult is the cash on hand and the most recent movements
type CashBalanceResult struct {
	Balance  valueobject.Money
	TotalIn  valueobject.Money
	TotalOut valueobject.Money
	Latest   []CashBookLine
}

func toCashBookLine(e cashbook.Entry) CashBookLine {
	return CashBookLine{
		ID:        e.ID,
		Date:      e.Date,
		Concept:   e.Concept,
		Category:  e.Category,
		In:        e.In,
		Out:       e.Out,
		Reference: e.Reference,
	}
}

func toPaymentLine(e treasury.LedgerEntry) PaymentLine {
	return PaymentLine{
		ID:       e.ID,
		Sequence: e.Sequence,
		Date:     e.Date,
		Label:    e.Label,
		Amount:   e.Amount,
	}
}
