package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apptreasury "github.com/logia/portal/internal/application/treasury"
	"github.com/logia/portal/internal/domain/membership"
)

// TreasuryService is the treasury application layer
type TreasuryService interface {
	GetStatement(ctx context.Context, viewer membership.Viewer, memberID uuid.UUID) (*apptreasury.StatementResult, error)
	ListPayments(ctx context.Context, viewer membership.Viewer, memberID uuid.UUID) ([]apptreasury.PaymentLine, error)
	DebtReport(ctx context.Context, viewer membership.Viewer) (*apptreasury.DebtReport, error)
	RunDues(ctx context.Context, viewer membership.Viewer, input apptreasury.RunDuesInput) (*apptreasury.RunDuesResult, error)
	RecordPayment(ctx context.Context, viewer membership.Viewer, input apptreasury.RecordPaymentInput) (*apptreasury.RecordPaymentResult, error)
	RecordExpense(ctx context.Context, viewer membership.Viewer, input apptreasury.RecordExpenseInput) (*apptreasury.CashBookLine, error)
	CashBalance(ctx context.Context, viewer membership.Viewer) (*apptreasury.CashBalanceResult, error)
}

// TreasuryHandler serves statements, dues runs and the cash book
type TreasuryHandler struct {
	BaseHandler
	treasury TreasuryService
}

// NewTreasuryHandler creates a new treasury handler
func NewTreasuryHandler(treasury TreasuryService) *TreasuryHandler {
	return &TreasuryHandler{treasury: treasury}
}

// GetStatement handles GET /treasury/members/:id/statement
func (h *TreasuryHandler) GetStatement(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}
	memberID, ok := h.memberIDParam(c)
	if !ok {
		return
	}

	statement, err := h.treasury.GetStatement(c.Request.Context(), viewer, memberID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toStatementResponse(statement))
}

// ListPayments handles GET /treasury/members/:id/payments
func (h *TreasuryHandler) ListPayments(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}
	memberID, ok := h.memberIDParam(c)
	if !ok {
		return
	}

	payments, err := h.treasury.ListPayments(c.Request.Context(), viewer, memberID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}
	h.Success(c, out)
}

// DebtReport handles GET /treasury/debts
func (h *TreasuryHandler) DebtReport(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}

	report, err := h.treasury.DebtReport(c.Request.Context(), viewer)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	lines := make([]DebtLineResponse, 0, len(report.Lines))
	for _, l := range report.Lines {
		lines = append(lines, DebtLineResponse{
			MemberID:       l.MemberID,
			MemberNumber:   l.MemberNumber,
			MemberName:     l.MemberName,
			Active:         l.Active,
			NetBalance:     l.NetBalance,
			ApproxDuesOwed: l.ApproxDuesOwed,
		})
	}
	h.Success(c, DebtReportResponse{Lines: lines, TotalOwed: report.TotalOwed})
}

// RunDues handles POST /treasury/dues-runs
func (h *TreasuryHandler) RunDues(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}
	var req RunDuesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		h.BadRequest(c, "Invalid date")
		return
	}

	result, err := h.treasury.RunDues(c.Request.Context(), viewer, apptreasury.RunDuesInput{
		Period:    req.Period,
		Date:      date,
		MemberIDs: req.MemberIDs,
		Amount:    req.Amount,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, RunDuesResponse{
		Label:   result.Label,
		Amount:  result.Amount,
		Charged: result.Charged,
		Skipped: result.Skipped,
	})
}

// RecordPayment handles POST /treasury/payments
func (h *TreasuryHandler) RecordPayment(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}
	var req RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		h.BadRequest(c, "Invalid date")
		return
	}

	result, err := h.treasury.RecordPayment(c.Request.Context(), viewer, apptreasury.RecordPaymentInput{
		MemberID: req.MemberID,
		Date:     date,
		Amount:   *req.Amount,
		Concept:  req.Concept,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, RecordPaymentResponse{
		Payment:         toPaymentResponse(result.Payment),
		CashBookEntryID: result.CashBookEntryID,
	})
}

// RecordExpense handles POST /treasury/expenses
func (h *TreasuryHandler) RecordExpense(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}
	var req RecordExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		h.BadRequest(c, "Invalid date")
		return
	}

	line, err := h.treasury.RecordExpense(c.Request.Context(), viewer, apptreasury.RecordExpenseInput{
		Date:     date,
		Concept:  req.Concept,
		Category: req.Category,
		Amount:   *req.Amount,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toCashBookEntryResponse(*line))
}

// CashBalance handles GET /treasury/cash-balance
func (h *TreasuryHandler) CashBalance(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}

	result, err := h.treasury.CashBalance(c.Request.Context(), viewer)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	latest := make([]CashBookEntryResponse, 0, len(result.Latest))
	for _, l := range result.Latest {
		latest = append(latest, toCashBookEntryResponse(l))
	}
	h.Success(c, CashBalanceResponse{
		Balance:  result.Balance,
		TotalIn:  result.TotalIn,
		TotalOut: result.TotalOut,
		Latest:   latest,
	})
}
