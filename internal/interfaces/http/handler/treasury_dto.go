package handler

import (
	"time"

	"github.com/google/uuid"
	apptreasury "github.com/logia/portal/internal/application/treasury"
	"github.com/logia/portal/internal/domain/cashbook"
	"github.com/logia/portal/internal/domain/shared/valueobject"
	"github.com/logia/portal/internal/domain/treasury"
	"github.com/shopspring/decimal"
)

// RunDuesRequest charges a dues period. Without member_ids every active
// member is charged; without amount the configured dues apply.
type RunDuesRequest struct {
	Period    string           `json:"period" binding:"required,max=60"`
	Date      string           `json:"date" binding:"omitempty,datetime=2006-01-02"`
	MemberIDs []uuid.UUID      `json:"member_ids"`
	Amount    *decimal.Decimal `json:"amount"`
}

// RecordPaymentRequest records money received from a member
type RecordPaymentRequest struct {
	MemberID uuid.UUID        `json:"member_id" binding:"required"`
	Date     string           `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Amount   *decimal.Decimal `json:"amount" binding:"required"`
	Concept  string           `json:"concept" binding:"max=200"`
}

// RecordExpenseRequest records money spent by the lodge
type RecordExpenseRequest struct {
	Date     string            `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Concept  string            `json:"concept" binding:"required,max=200"`
	Category cashbook.Category `json:"category" binding:"required,oneof=OPERATING GRAND_LODGE EVENT"`
	Amount   *decimal.Decimal  `json:"amount" binding:"required"`
}

// FundingSourceResponse is one draw from a payment
type FundingSourceResponse struct {
	PaymentID   uuid.UUID         `json:"payment_id"`
	PaymentDate time.Time         `json:"payment_date"`
	AmountDrawn valueobject.Money `json:"amount_drawn"`
}

// StatementLineResponse is one charge and how it was funded
type StatementLineResponse struct {
	ChargeID        uuid.UUID               `json:"charge_id"`
	Date            time.Time               `json:"date"`
	Label           string                  `json:"label"`
	Amount          valueobject.Money       `json:"amount"`
	Status          treasury.ChargeStatus   `json:"status"`
	AmountCovered   valueobject.Money       `json:"amount_covered"`
	AmountRemaining valueobject.Money       `json:"amount_remaining"`
	FundingSources  []FundingSourceResponse `json:"funding_sources"`
}

// StatementResponse is a member's reconciled account
type StatementResponse struct {
	MemberID          uuid.UUID               `json:"member_id"`
	MemberNumber      int                     `json:"member_number"`
	MemberName        string                  `json:"member_name"`
	Lines             []StatementLineResponse `json:"lines"`
	TotalCharged      valueobject.Money       `json:"total_charged"`
	TotalPaid         valueobject.Money       `json:"total_paid"`
	NetBalance        valueobject.Money       `json:"net_balance"`
	UnallocatedCredit valueobject.Money       `json:"unallocated_credit"`
	InCredit          bool                    `json:"in_credit"`
	ApproxDuesOwed    int64                   `json:"approx_dues_owed"`
	OutOfOrderDates   bool                    `json:"out_of_order_dates"`
}

// PaymentResponse is a recorded payment
type PaymentResponse struct {
	ID       uuid.UUID         `json:"id"`
	Sequence int64             `json:"sequence"`
	Date     time.Time         `json:"date"`
	Label    string            `json:"label"`
	Amount   valueobject.Money `json:"amount"`
}

// DebtLineResponse is one member's balance
type DebtLineResponse struct {
	MemberID       uuid.UUID         `json:"member_id"`
	MemberNumber   int               `json:"member_number"`
	MemberName     string            `json:"member_name"`
	Active         bool              `json:"active"`
	NetBalance     valueobject.Money `json:"net_balance"`
	ApproxDuesOwed int64             `json:"approx_dues_owed"`
}

// DebtReportResponse is the lodge debt report
type DebtReportResponse struct {
	Lines     []DebtLineResponse `json:"lines"`
	TotalOwed valueobject.Money  `json:"total_owed"`
}

// RunDuesResponse reports what a dues run charged
type RunDuesResponse struct {
	Label   string            `json:"label"`
	Amount  valueobject.Money `json:"amount"`
	Charged []uuid.UUID       `json:"charged"`
	Skipped []uuid.UUID       `json:"skipped"`
}

// RecordPaymentResponse is the written payment and its cash book entry
type RecordPaymentResponse struct {
	Payment         PaymentResponse `json:"payment"`
	CashBookEntryID uuid.UUID       `json:"cash_book_entry_id"`
}

// CashBookEntryResponse is one cash book movement
type CashBookEntryResponse struct {
	ID        uuid.UUID         `json:"id"`
	Date      time.Time         `json:"date"`
	Concept   string            `json:"concept"`
	Category  cashbook.Category `json:"category"`
	In        valueobject.Money `json:"in"`
	Out       valueobject.Money `json:"out"`
	Reference string            `json:"reference,omitempty"`
}

// CashBalanceResponse is the cash on hand
type CashBalanceResponse struct {
	Balance  valueobject.Money       `json:"balance"`
	TotalIn  valueobject.Money       `json:"total_in"`
	TotalOut valueobject.Money       `json:"total_out"`
	Latest   []CashBookEntryResponse `json:"latest"`
}

func toStatementResponse(s *apptreasury.StatementResult) StatementResponse {
	lines := make([]StatementLineResponse, 0, len(s.Lines))
	for _, l := range s.Lines {
		sources := make([]FundingSourceResponse, 0, len(l.FundingSources))
		for _, fs := range l.FundingSources {
			sources = append(sources, FundingSourceResponse{
				PaymentID:   fs.PaymentID,
				PaymentDate: fs.PaymentDate,
				AmountDrawn: fs.AmountDrawn,
			})
		}
		lines = append(lines, StatementLineResponse{
			ChargeID:        l.ChargeID,
			Date:            l.Date,
			Label:           l.Label,
			Amount:          l.Amount,
			Status:          l.Status,
			AmountCovered:   l.AmountCovered,
			AmountRemaining: l.AmountRemaining,
			FundingSources:  sources,
		})
	}
	return StatementResponse{
		MemberID:          s.MemberID,
		MemberNumber:      s.MemberNumber,
		MemberName:        s.MemberName,
		Lines:             lines,
		TotalCharged:      s.TotalCharged,
		TotalPaid:         s.TotalPaid,
		NetBalance:        s.NetBalance,
		UnallocatedCredit: s.UnallocatedCredit,
		InCredit:          s.InCredit,
		ApproxDuesOwed:    s.ApproxDuesOwed,
		OutOfOrderDates:   s.OutOfOrderDates,
	}
}

func toPaymentResponse(p apptreasury.PaymentLine) PaymentResponse {
	return PaymentResponse{ID: p.ID, Sequence: p.Sequence, Date: p.Date, Label: p.Label, Amount: p.Amount}
}

func toCashBookEntryResponse(l apptreasury.CashBookLine) CashBookEntryResponse {
	return CashBookEntryResponse{
		ID:        l.ID,
		Date:      l.Date,
		Concept:   l.Concept,
		Category:  l.Category,
		In:        l.In,
		Out:       l.Out,
		Reference: l.Reference,
	}
}
