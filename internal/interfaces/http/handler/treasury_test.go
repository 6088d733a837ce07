package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	apptreasury "github.com/logia/portal/internal/application/treasury"
	"github.com/logia/portal/internal/domain/cashbook"
	"github.com/logia/portal/internal/domain/membership"
	"github.com/logia/portal/internal/domain/shared"
	"github.com/logia/portal/internal/domain/shared/valueobject"
	"github.com/logia/portal/internal/domain/treasury"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTreasuryService struct {
	mock.Mock
}

func (m *MockTreasuryService) GetStatement(ctx context.Context, viewer membership.Viewer, memberID uuid.UUID) (*apptreasury.StatementResult, error) {
	args := m.Called(ctx, viewer, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptreasury.StatementResult), args.Error(1)
}

func (m *MockTreasuryService) ListPayments(ctx context.Context, viewer membership.Viewer, memberID uuid.UUID) ([]apptreasury.PaymentLine, error) {
	args := m.Called(ctx, viewer, memberID)
	return args.Get(0).([]apptreasury.PaymentLine), args.Error(1)
}

func (m *MockTreasuryService) DebtReport(ctx context.Context, viewer membership.Viewer) (*apptreasury.DebtReport, error) {
	args := m.Called(ctx, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptreasury.DebtReport), args.Error(1)
}

func (m *MockTreasuryService) RunDues(ctx context.Context, viewer membership.Viewer, input apptreasury.RunDuesInput) (*apptreasury.RunDuesResult, error) {
	args := m.Called(ctx, viewer, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptreasury.RunDuesResult), args.Error(1)
}

func (m *MockTreasuryService) RecordPayment(ctx context.Context, viewer membership.Viewer, input apptreasury.RecordPaymentInput) (*apptreasury.RecordPaymentResult, error) {
	args := m.Called(ctx, viewer, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptreasury.RecordPaymentResult), args.Error(1)
}

func (m *MockTreasuryService) RecordExpense(ctx context.Context, viewer membership.Viewer, input apptreasury.RecordExpenseInput) (*apptreasury.CashBookLine, error) {
	args := m.Called(ctx, viewer, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptreasury.CashBookLine), args.Error(1)
}

func (m *MockTreasuryService) CashBalance(ctx context.Context, viewer membership.Viewer) (*apptreasury.CashBalanceResult, error) {
	args := m.Called(ctx, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptreasury.CashBalanceResult), args.Error(1)
}

func treasuryEngine(v *membership.Viewer, svc TreasuryService) http.Handler {
	h := NewTreasuryHandler(svc)
	r := newTestEngine(v)
	r.GET("/treasury/members/:id/statement", h.GetStatement)
	r.GET("/treasury/members/:id/payments", h.ListPayments)
	r.GET("/treasury/debts", h.DebtReport)
	r.POST("/treasury/dues-runs", h.RunDues)
	r.POST("/treasury/payments", h.RecordPayment)
	r.POST("/treasury/expenses", h.RecordExpense)
	r.GET("/treasury/cash-balance", h.CashBalance)
	return r
}

func TestTreasuryHandler_GetStatement(t *testing.T) {
	viewer := viewerOf(membership.RoleMember)
	memberID := viewer.MemberID
	paymentID := uuid.New()
	date := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	t.Run("serialises money as decimal strings", func(t *testing.T) {
		svc := new(MockTreasuryService)
		svc.On("GetStatement", mock.Anything, viewer, memberID).Return(&apptreasury.StatementResult{
			MemberID:   memberID,
			MemberName: "Juan Perez",
			Lines: []apptreasury.StatementLine{{
				ChargeID:        uuid.New(),
				Date:            date,
				Label:           "Dues 2024-01",
				Amount:          valueobject.MustMoney("450"),
				Status:          treasury.ChargeStatusPartial,
				AmountCovered:   valueobject.MustMoney("300"),
				AmountRemaining: valueobject.MustMoney("150"),
				FundingSources: []treasury.FundingSource{
					{PaymentID: paymentID, PaymentDate: date, AmountDrawn: valueobject.MustMoney("300")},
				},
			}},
			TotalCharged:      valueobject.MustMoney("450"),
			TotalPaid:         valueobject.MustMoney("300"),
			NetBalance:        valueobject.MustMoney("150"),
			UnallocatedCredit: valueobject.MustMoney("0"),
		}, nil)

		w, resp := perform(t, treasuryEngine(&viewer, svc), http.MethodGet, "/treasury/members/"+memberID.String()+"/statement", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, resp.Success)

		var body StatementResponse
		decodeData(t, resp, &body)
		require.Len(t, body.Lines, 1)
		assert.Equal(t, treasury.ChargeStatusPartial, body.Lines[0].Status)
		assert.Equal(t, paymentID, body.Lines[0].FundingSources[0].PaymentID)
		assert.Contains(t, string(resp.Data), `"amount":"150.00"`)
	})

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"forbidden", shared.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"unknown member", shared.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"corrupt ledger", shared.NewDomainError("INVALID_AMOUNT", "Amount must not be negative"), http.StatusBadRequest, "INVALID_AMOUNT"},
		{"inconsistent totals", shared.ErrLedgerInconsistent, http.StatusInternalServerError, "LEDGER_INCONSISTENT"},
		{"repository failure", errors.New("connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockTreasuryService)
			svc.On("GetStatement", mock.Anything, viewer, memberID).Return(nil, tt.err)

			w, resp := perform(t, treasuryEngine(&viewer, svc), http.MethodGet, "/treasury/members/"+memberID.String()+"/statement", nil)
			assert.Equal(t, tt.status, w.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}

	t.Run("malformed id", func(t *testing.T) {
		svc := new(MockTreasuryService)
		w, _ := perform(t, treasuryEngine(&viewer, svc), http.MethodGet, "/treasury/members/42/statement", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "GetStatement", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no viewer", func(t *testing.T) {
		w, _ := perform(t, treasuryEngine(nil, new(MockTreasuryService)), http.MethodGet, "/treasury/members/"+memberID.String()+"/statement", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestTreasuryHandler_RunDues(t *testing.T) {
	viewer := viewerOf(membership.RoleTreasurer)

	t.Run("passes the request through", func(t *testing.T) {
		svc := new(MockTreasuryService)
		amount := decimal.RequireFromString("500")
		charged := []uuid.UUID{uuid.New()}
		svc.On("RunDues", mock.Anything, viewer, mock.MatchedBy(func(in apptreasury.RunDuesInput) bool {
			return in.Period == "2024-03" && in.Amount != nil && in.Amount.Equal(amount) &&
				in.Date.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
		})).Return(&apptreasury.RunDuesResult{
			Label:   "Dues 2024-03",
			Amount:  valueobject.MustMoney("500"),
			Charged: charged,
		}, nil)

		w, resp := perform(t, treasuryEngine(&viewer, svc), http.MethodPost, "/treasury/dues-runs",
			`{"period":"2024-03","date":"2024-03-01","amount":"500"}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var body RunDuesResponse
		decodeData(t, resp, &body)
		assert.Equal(t, "Dues 2024-03", body.Label)
		assert.Equal(t, charged, body.Charged)
	})

	t.Run("period is required", func(t *testing.T) {
		svc := new(MockTreasuryService)
		w, resp := perform(t, treasuryEngine(&viewer, svc), http.MethodPost, "/treasury/dues-runs", `{"date":"2024-03-01"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "period", resp.Error.Details[0].Field)
	})

	t.Run("bad date", func(t *testing.T) {
		w, _ := perform(t, treasuryEngine(&viewer, new(MockTreasuryService)), http.MethodPost, "/treasury/dues-runs",
			`{"period":"2024-03","date":"01/03/2024"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTreasuryHandler_RecordPayment(t *testing.T) {
	viewer := viewerOf(membership.RoleTreasurer)
	memberID := uuid.New()

	svc := new(MockTreasuryService)
	svc.On("RecordPayment", mock.Anything, viewer, mock.MatchedBy(func(in apptreasury.RecordPaymentInput) bool {
		return in.MemberID == memberID && in.Amount.Equal(decimal.RequireFromString("900.50")) && in.Date.IsZero()
	})).Return(&apptreasury.RecordPaymentResult{
		Payment:         apptreasury.PaymentLine{ID: uuid.New(), Sequence: 7, Label: "Payment", Amount: valueobject.MustMoney("900.50")},
		CashBookEntryID: uuid.New(),
	}, nil)

	w, resp := perform(t, treasuryEngine(&viewer, svc), http.MethodPost, "/treasury/payments",
		map[string]any{"member_id": memberID, "amount": 900.50})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body RecordPaymentResponse
	decodeData(t, resp, &body)
	assert.Equal(t, int64(7), body.Payment.Sequence)
	assert.Equal(t, "900.50", body.Payment.Amount.StringFixed())

	w, _ = perform(t, treasuryEngine(&viewer, svc), http.MethodPost, "/treasury/payments",
		map[string]any{"member_id": memberID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTreasuryHandler_RecordExpense(t *testing.T) {
	viewer := viewerOf(membership.RoleTreasurer)

	svc := new(MockTreasuryService)
	svc.On("RecordExpense", mock.Anything, viewer, mock.MatchedBy(func(in apptreasury.RecordExpenseInput) bool {
		return in.Category == cashbook.CategoryGrandLodge && in.Concept == "Per capita"
	})).Return(&apptreasury.CashBookLine{
		ID:       uuid.New(),
		Concept:  "Per capita",
		Category: cashbook.CategoryGrandLodge,
		In:       valueobject.MustMoney("0"),
		Out:      valueobject.MustMoney("800"),
	}, nil)

	w, _ := perform(t, treasuryEngine(&viewer, svc), http.MethodPost, "/treasury/expenses",
		`{"date":"2024-01-15","concept":"Per capita","category":"GRAND_LODGE","amount":"800"}`)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, _ = perform(t, treasuryEngine(&viewer, svc), http.MethodPost, "/treasury/expenses",
		`{"concept":"Cuotas","category":"INCOME","amount":"800"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTreasuryHandler_Reports(t *testing.T) {
	viewer := viewerOf(membership.RoleWorshipfulMaster)
	svc := new(MockTreasuryService)
	svc.On("DebtReport", mock.Anything, viewer).Return(&apptreasury.DebtReport{
		Lines: []apptreasury.DebtLine{
			{MemberID: uuid.New(), MemberName: "Juan Perez", Active: true, NetBalance: valueobject.MustMoney("900"), ApproxDuesOwed: 2},
		},
		TotalOwed: valueobject.MustMoney("900"),
	}, nil)
	svc.On("CashBalance", mock.Anything, viewer).Return(nil, shared.ErrForbidden)

	w, resp := perform(t, treasuryEngine(&viewer, svc), http.MethodGet, "/treasury/debts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report DebtReportResponse
	decodeData(t, resp, &report)
	require.Len(t, report.Lines, 1)
	assert.Equal(t, int64(2), report.Lines[0].ApproxDuesOwed)

	w, _ = perform(t, treasuryEngine(&viewer, svc), http.MethodGet, "/treasury/cash-balance", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
