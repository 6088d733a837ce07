package treasury

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/logia/portal/internal/domain/cashbook"
	"github.com/logia/portal/internal/domain/membership"
	"github.com/logia/portal/internal/domain/shared"
	"github.com/logia/portal/internal/domain/shared/valueobject"
	"github.com/logia/portal/internal/domain/treasury"
	"github.com/logia/portal/internal/infrastructure/logger"
	"github.com/logia/portal/internal/infrastructure/metrics"
	"github.com/logia/portal/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// latestCashEntries is how many cash book lines CashBalance returns
const latestCashEntries = 10

// Config holds treasury settings
type Config struct {
	Currency   valueobject.Currency
	DuesAmount valueobject.Money
}

// Service handles member accounts, dues and the lodge cash book
type Service struct {
	ledger    treasury.LedgerRepository
	members   membership.MemberRepository
	book      cashbook.EntryRepository
	uow       shared.UnitOfWork
	allocator treasury.Allocator
	cfg       Config
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new treasury service
func NewService(
	ledger treasury.LedgerRepository,
	members membership.MemberRepository,
	book cashbook.EntryRepository,
	uow shared.UnitOfWork,
	cfg Config,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	if cfg.Currency == "" {
		cfg.Currency = valueobject.DefaultCurrency
	}
	if !cfg.DuesAmount.IsPositive() {
		cfg.DuesAmount = treasury.DefaultDuesAmount
	}
	return &Service{
		ledger:    ledger,
		members:   members,
		book:      book,
		uow:       uow,
		allocator: treasury.NewFIFOAllocator(cfg.Currency),
		cfg:       cfg,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// GetStatement reconciles a member's ledger. Members see their own account;
// treasury officers see any.
func (s *Service) GetStatement(ctx context.Context, viewer membership.Viewer, memberID uuid.UUID) (*StatementResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "treasury", "statement", telemetry.MemberAttr(memberID))
	defer span.End()

	if !viewer.CanViewStatement(memberID) {
		s.metrics.StatementServed(shared.ErrForbidden.Code)
		return nil, shared.ErrForbidden
	}

	member, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		s.metrics.StatementServed(resultOf(err))
		return nil, err
	}
	entries, err := s.ledger.FindByMember(ctx, memberID)
	if err != nil {
		telemetry.RecordError(span, err)
		s.metrics.StatementServed("error")
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	statement, err := s.reconcile(ctx, memberID, entries)
	if err != nil {
		telemetry.RecordError(span, err)
		s.metrics.StatementServed(resultOf(err))
		return nil, err
	}
	s.metrics.StatementServed("ok")

	return toStatementResult(member, statement), nil
}

// ListPayments returns a member's raw payments in recording order
func (s *Service) ListPayments(ctx context.Context, viewer membership.Viewer, memberID uuid.UUID) ([]PaymentLine, error) {
	if !viewer.CanViewStatement(memberID) {
		return nil, shared.ErrForbidden
	}
	if _, err := s.members.FindByID(ctx, memberID); err != nil {
		return nil, err
	}
	entries, err := s.ledger.FindByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	lines := make([]PaymentLine, 0)
	for _, e := range entries {
		if e.Kind == treasury.EntryKindPayment {
			lines = append(lines, toPaymentLine(e))
		}
	}
	return lines, nil
}

// DebtReport reconciles every ledger and lists the balances by member name.
// Members without any entry are left out.
func (s *Service) DebtReport(ctx context.Context, viewer membership.Viewer) (*DebtReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "treasury", "debt_report")
	defer span.End()

	if err := viewer.Require(membership.PermDebtReport); err != nil {
		return nil, err
	}

	members, err := s.members.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	ledgers, err := s.ledger.FindAll(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("load ledgers: %w", err)
	}

	report := &DebtReport{
		Lines:     make([]DebtLine, 0, len(ledgers)),
		TotalOwed: valueobject.Zero(s.cfg.Currency),
	}
	for _, m := range members {
		entries, ok := ledgers[m.ID]
		if !ok {
			continue
		}
		statement, err := s.reconcile(ctx, m.ID, entries)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		line := DebtLine{
			MemberID:       m.ID,
			MemberNumber:   m.Number,
			MemberName:     m.FullName,
			Active:         m.IsActive(),
			NetBalance:     statement.Summary.NetBalance,
			ApproxDuesOwed: statement.ApproxDuesOwed,
		}
		report.Lines = append(report.Lines, line)
		// reconcile rejects ledgers outside s.cfg.Currency
		if line.NetBalance.IsPositive() {
			report.TotalOwed = report.TotalOwed.MustAdd(line.NetBalance)
		}
	}

	return report, nil
}

// RunDues appends one dues charge per selected active member in a single
// transaction. Inactive members are skipped; unknown members fail the run.
func (s *Service) RunDues(ctx context.Context, viewer membership.Viewer, input RunDuesInput) (*RunDuesResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "treasury", "run_dues")
	defer span.End()

	if err := viewer.Require(membership.PermDuesRun); err != nil {
		return nil, err
	}

	amount := s.cfg.DuesAmount
	if input.Amount != nil {
		m, err := s.enteredAmount(*input.Amount)
		if err != nil {
			return nil, err
		}
		amount = m
	}
	date := input.Date
	if date.IsZero() {
		date = s.now()
	}
	run, err := treasury.NewDuesRun(input.Period, date, amount)
	if err != nil {
		return nil, err
	}

	targets, err := s.duesTargets(ctx, input.MemberIDs)
	if err != nil {
		return nil, err
	}
	result := &RunDuesResult{
		Label:   run.Label(),
		Amount:  run.Amount,
		Charged: make([]uuid.UUID, 0, len(targets)),
		Skipped: make([]uuid.UUID, 0),
	}
	for _, m := range targets {
		if m.IsActive() {
			result.Charged = append(result.Charged, m.ID)
		} else {
			result.Skipped = append(result.Skipped, m.ID)
		}
	}
	if len(result.Charged) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "No active member selected for the dues run")
	}

	charges, err := run.ChargesFor(result.Charged)
	if err != nil {
		return nil, err
	}
	entries := make([]*treasury.LedgerEntry, 0, len(charges))
	for i := range charges {
		entries = append(entries, &charges[i].LedgerEntry)
	}
	err = s.uow.Do(ctx, func(ctx context.Context) error {
		return s.ledger.Append(ctx, entries...)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("append dues charges: %w", err)
	}

	s.metrics.LedgerEntriesRecorded(treasury.EntryKindCharge.String(), len(entries))
	s.metrics.DuesCharged(len(entries))
	logger.ForContext(ctx, s.logger).Info("Dues run recorded",
		zap.String("label", result.Label),
		zap.String("amount", amount.StringFixed()),
		zap.Int("charged", len(result.Charged)),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

func (s *Service) duesTargets(ctx context.Context, ids []uuid.UUID) ([]membership.Member, error) {
	if len(ids) == 0 {
		members, err := s.members.FindActive(ctx)
		if err != nil {
			return nil, fmt.Errorf("load active members: %w", err)
		}
		return members, nil
	}
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]membership.Member, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		m, err := s.members.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, nil
}

// RecordPayment writes the ledger payment and the matching cash book income
// together.
func (s *Service) RecordPayment(ctx context.Context, viewer membership.Viewer, input RecordPaymentInput) (*RecordPaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "treasury", "record_payment", telemetry.MemberAttr(input.MemberID))
	defer span.End()

	if err := viewer.Require(membership.PermPaymentRecord); err != nil {
		return nil, err
	}
	member, err := s.members.FindByID(ctx, input.MemberID)
	if err != nil {
		return nil, err
	}

	amount, err := s.enteredAmount(input.Amount)
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment must be positive")
	}
	date := input.Date
	if date.IsZero() {
		date = s.now()
	}
	concept := strings.TrimSpace(input.Concept)
	if concept == "" {
		concept = "Payment"
	}

	payment, err := treasury.NewPayment(member.ID, date, concept, amount)
	if err != nil {
		return nil, err
	}
	income, err := cashbook.NewIncome(payment.Date, fmt.Sprintf("%s - %s", concept, member.FullName), amount,
		fmt.Sprintf("member #%d", member.Number))
	if err != nil {
		return nil, err
	}

	err = s.uow.Do(ctx, func(ctx context.Context) error {
		if err := s.ledger.Append(ctx, &payment.LedgerEntry); err != nil {
			return err
		}
		return s.book.Save(ctx, income)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("record payment: %w", err)
	}

	s.metrics.LedgerEntriesRecorded(treasury.EntryKindPayment.String(), 1)
	logger.ForContext(ctx, s.logger).Info("Payment recorded",
		zap.String("member_id", member.ID.String()),
		zap.String("amount", amount.StringFixed()),
	)
	return &RecordPaymentResult{
		Payment:         toPaymentLine(payment.LedgerEntry),
		CashBookEntryID: income.ID,
	}, nil
}

// RecordExpense writes an outflow to the cash book
func (s *Service) RecordExpense(ctx context.Context, viewer membership.Viewer, input RecordExpenseInput) (*CashBookLine, error) {
	if err := viewer.Require(membership.PermExpenseRecord); err != nil {
		return nil, err
	}
	amount, err := s.enteredAmount(input.Amount)
	if err != nil {
		return nil, err
	}
	date := input.Date
	if date.IsZero() {
		date = s.now()
	}
	entry, err := cashbook.NewExpense(date, input.Concept, input.Category, amount)
	if err != nil {
		return nil, err
	}
	if err := s.book.Save(ctx, entry); err != nil {
		return nil, fmt.Errorf("save expense: %w", err)
	}
	logger.ForContext(ctx, s.logger).Info("Expense recorded",
		zap.String("category", string(entry.Category)),
		zap.String("amount", amount.StringFixed()),
	)
	line := toCashBookLine(*entry)
	return &line, nil
}

// CashBalance is cash on hand with the most recent movements first
func (s *Service) CashBalance(ctx context.Context, viewer membership.Viewer) (*CashBalanceResult, error) {
	if err := viewer.Require(membership.PermCashBook); err != nil {
		return nil, err
	}
	entries, err := s.book.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cash book: %w", err)
	}

	totals, err := cashbook.Summarize(s.cfg.Currency, entries)
	if err != nil {
		logger.ForContext(ctx, s.logger).Error("Cash book holds a foreign currency", zap.Error(err))
		return nil, err
	}
	result := &CashBalanceResult{
		Balance:  totals.Balance,
		TotalIn:  totals.In,
		TotalOut: totals.Out,
		Latest:   make([]CashBookLine, 0, latestCashEntries),
	}
	for i := len(entries) - 1; i >= 0 && len(result.Latest) < latestCashEntries; i-- {
		result.Latest = append(result.Latest, toCashBookLine(entries[i]))
	}
	return result, nil
}

func (s *Service) reconcile(ctx context.Context, memberID uuid.UUID, entries []treasury.LedgerEntry) (*treasury.Statement, error) {
	ledger, err := treasury.NewLedger(memberID, s.cfg.Currency, entries)
	if err != nil {
		return nil, err
	}
	statement, err := ledger.Statement(s.allocator, s.cfg.DuesAmount)
	if err != nil {
		if shared.CodeOf(err) == shared.ErrLedgerInconsistent.Code {
			s.metrics.LedgerInconsistent()
			logger.ForContext(ctx, s.logger).Error("Ledger totals do not reconcile",
				zap.String("member_id", memberID.String()),
				zap.Error(err),
			)
		}
		return nil, err
	}
	if statement.OutOfOrderDates {
		logger.ForContext(ctx, s.logger).Warn("Ledger recorded out of date order",
			zap.String("member_id", memberID.String()),
		)
	}
	return statement, nil
}

func resultOf(err error) string {
	if code := shared.CodeOf(err); code != "" {
		return code
	}
	return "error"
}

func toStatementResult(member *membership.Member, st *treasury.Statement) *StatementResult {
	lines := make([]StatementLine, 0, len(st.Results))
	for _, r := range st.Results {
		lines = append(lines, StatementLine{
			ChargeID:        r.Charge.ID,
			Date:            r.Charge.Date,
			Label:           r.Charge.Label,
			Amount:          r.Charge.Amount,
			Status:          r.Status,
			AmountCovered:   r.AmountCovered,
			AmountRemaining: r.AmountRemaining,
			FundingSources:  r.FundingSources,
		})
	}
	return &StatementResult{
		MemberID:          member.ID,
		MemberNumber:      member.Number,
		MemberName:        member.FullName,
		Lines:             lines,
		TotalCharged:      st.Summary.TotalCharged,
		TotalPaid:         st.Summary.TotalPaid,
		NetBalance:        st.Summary.NetBalance,
		UnallocatedCredit: st.Summary.UnallocatedCredit,
		InCredit:          st.Summary.InCredit(),
		ApproxDuesOwed:    st.ApproxDuesOwed,
		OutOfOrderDates:   st.OutOfOrderDates,
	}
}

// enteredAmount converts an amount typed by a user into Money
func (s *Service) enteredAmount(d decimal.Decimal) (valueobject.Money, error) {
	m, err := valueobject.NewExactMoney(d, s.cfg.Currency)
	if err != nil {
		return valueobject.Money{}, shared.NewDomainError("INVALID_AMOUNT", "Amount cannot have more than two decimal places")
	}
	return m, nil
}
