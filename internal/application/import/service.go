// Package importapp loads the lodge workbook tabs, exported as CSV, into the
// portal. Every sheet is all-or-nothing: a single rejected row leaves the
// store untouched and the full error list is returned.
package importapp

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/logia/portal/internal/domain/attendance"
	"github.com/logia/portal/internal/domain/cashbook"
	"github.com/logia/portal/internal/domain/membership"
	"github.com/logia/portal/internal/domain/shared"
	"github.com/logia/portal/internal/domain/treasury"
	csvimport "github.com/logia/portal/internal/infrastructure/import"
	"github.com/logia/portal/internal/infrastructure/logger"
	"github.com/logia/portal/internal/infrastructure/metrics"
	"github.com/logia/portal/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Result reports the outcome of one sheet import
type Result struct {
	Sheet       string
	Total       int
	Imported    int
	Rejected    int
	Errors      []csvimport.RowError
	TotalErrors int
	Truncated   bool
}

// Committed reports whether the rows were written
func (r *Result) Committed() bool {
	return r.Rejected == 0 && r.Imported > 0
}

// Service imports workbook tabs
type Service struct {
	members membership.MemberRepository
	ledger  treasury.LedgerRepository
	records attendance.RecordRepository
	book    cashbook.EntryRepository
	uow     shared.UnitOfWork
	decoder *csvimport.Decoder
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewService creates a new import service
func NewService(
	members membership.MemberRepository,
	ledger treasury.LedgerRepository,
	records attendance.RecordRepository,
	book cashbook.EntryRepository,
	uow shared.UnitOfWork,
	decoder *csvimport.Decoder,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	return &Service{
		members: members,
		ledger:  ledger,
		records: records,
		book:    book,
		uow:     uow,
		decoder: decoder,
		metrics: m,
		logger:  logger,
	}
}

// ImportMembers loads the DIRECTORIO tab. Stored password digests are kept and
// every imported member must choose a new password.
func (s *Service) ImportMembers(ctx context.Context, r io.Reader) (*Result, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "import", "members")
	defer span.End()

	rows, errs, err := csvimport.ReadSheet[csvimport.MemberRow](s.decoder, csvimport.SheetDirectory, r)
	if err != nil {
		return nil, err
	}

	numbers := make(map[int]int, len(rows))
	usernames := make(map[string]int, len(rows))
	members := make([]*membership.Member, 0, len(rows))
	for _, row := range rows {
		v := row.Value
		number, _ := strconv.Atoi(strings.TrimSpace(v.Number))
		username := strings.ToLower(strings.TrimSpace(v.Username))

		if _, dup := numbers[number]; dup {
			errs.AddDuplicateError(row.Line, "ID_H", v.Number)
			continue
		}
		numbers[number] = row.Line
		if _, dup := usernames[username]; dup {
			errs.AddDuplicateError(row.Line, "Usuario", v.Username)
			continue
		}
		usernames[username] = row.Line

		if _, err := s.members.FindByNumber(ctx, number); err == nil {
			errs.Add(csvimport.RowError{
				Row: row.Line, Column: "ID_H", Code: csvimport.ErrCodeImportInvalidValue,
				Message: "member number is already registered", Value: v.Number,
			})
			continue
		}
		if _, err := s.members.FindByUsername(ctx, username); err == nil {
			errs.Add(csvimport.RowError{
				Row: row.Line, Column: "Usuario", Code: csvimport.ErrCodeImportInvalidValue,
				Message: "username is already taken", Value: v.Username,
			})
			continue
		}

		role, _ := csvimport.RoleFromSheet(v.Role)
		degree, _ := strconv.Atoi(strings.TrimSpace(v.Degree))
		m, err := membership.RestoreMember(number, v.FullName, username, v.PasswordHash,
			role, membership.Degree(degree), csvimport.StatusFromSheet(v.Status))
		if err != nil {
			addDomainError(errs, row.Line, err)
			continue
		}
		m.Dossier = membership.Dossier{
			Phone:            strings.TrimSpace(v.Phone),
			Email:            strings.TrimSpace(v.Email),
			Profession:       strings.TrimSpace(v.Profession),
			BloodType:        strings.TrimSpace(v.BloodType),
			EmergencyContact: strings.TrimSpace(v.EmergencyContact),
			Offices:          strings.TrimSpace(v.Offices),
		}
		if v.InitiationDate != "" {
			if d, err := s.decoder.ParseDate(v.InitiationDate); err == nil {
				m.Dossier.InitiationDate = &d
			}
		}
		members = append(members, m)
	}

	return s.commit(ctx, csvimport.SheetDirectory, len(rows), len(members), errs, func(ctx context.Context) error {
		for _, m := range members {
			if err := s.members.Save(ctx, m); err != nil {
				return fmt.Errorf("save member %d: %w", m.Number, err)
			}
		}
		return nil
	})
}

// ImportLedger loads the TESORERIA tab. Rows are appended in file order, which
// becomes their recording order. Importing into a ledger that already holds
// entries requires appendOnly.
func (s *Service) ImportLedger(ctx context.Context, r io.Reader, appendOnly bool) (*Result, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "import", "ledger")
	defer span.End()

	if !appendOnly {
		existing, err := s.ledger.FindAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("load ledgers: %w", err)
		}
		if len(existing) > 0 {
			return nil, shared.NewDomainError("INVALID_STATE",
				"The ledger already holds entries; import with append to add to it")
		}
	}

	rows, errs, err := csvimport.ReadSheet[csvimport.LedgerRow](s.decoder, csvimport.SheetTreasury, r)
	if err != nil {
		return nil, err
	}

	resolve := s.memberResolver(ctx)
	entries := make([]*treasury.LedgerEntry, 0, len(rows))
	counts := map[treasury.EntryKind]int{}
	for _, row := range rows {
		v := row.Value
		member, ok := resolve(v.Number)
		if !ok {
			errs.AddReferenceError(row.Line, "ID_H", v.Number, "member")
			continue
		}
		date, err := s.decoder.ParseDate(v.Date)
		if err != nil {
			errs.Add(csvimport.RowError{Row: row.Line, Column: "Fecha", Code: csvimport.ErrCodeImportInvalidFormat,
				Message: "expected a date as dd/mm/yyyy", Value: v.Date})
			continue
		}
		amount, err := s.decoder.ParseMoney(v.Amount)
		if err != nil {
			errs.Add(csvimport.RowError{Row: row.Line, Column: "Monto", Code: csvimport.ErrCodeImportInvalidType,
				Message: "expected a non-negative amount", Value: v.Amount})
			continue
		}

		kind := csvimport.KindFromSheet(v.Kind)
		var entry treasury.LedgerEntry
		if kind == treasury.EntryKindPayment {
			p, err := treasury.NewPayment(member.ID, date, v.Concept, amount)
			if err != nil {
				addDomainError(errs, row.Line, err)
				continue
			}
			entry = p.LedgerEntry
		} else {
			c, err := treasury.NewCharge(member.ID, date, v.Concept, amount)
			if err != nil {
				addDomainError(errs, row.Line, err)
				continue
			}
			entry = c.LedgerEntry
		}
		entries = append(entries, &entry)
		counts[kind]++
	}

	result, err := s.commit(ctx, csvimport.SheetTreasury, len(rows), len(entries), errs, func(ctx context.Context) error {
		return s.ledger.Append(ctx, entries...)
	})
	if err == nil && result.Committed() {
		for kind, n := range counts {
			s.metrics.LedgerEntriesRecorded(kind.String(), n)
		}
	}
	return result, err
}

// ImportAttendance loads the ASISTENCIAS tab. Marks for a meeting already
// stored are overwritten.
func (s *Service) ImportAttendance(ctx context.Context, r io.Reader) (*Result, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "import", "attendance")
	defer span.End()

	rows, errs, err := csvimport.ReadSheet[csvimport.AttendanceRow](s.decoder, csvimport.SheetAttendance, r)
	if err != nil {
		return nil, err
	}

	resolve := s.memberResolver(ctx)
	records := make([]*attendance.Record, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		v := row.Value
		member, ok := resolve(v.Number)
		if !ok {
			errs.AddReferenceError(row.Line, "ID_H", v.Number, "member")
			continue
		}
		date, err := s.decoder.ParseDate(v.MeetingDate)
		if err != nil {
			errs.Add(csvimport.RowError{Row: row.Line, Column: "Fecha_Tenida", Code: csvimport.ErrCodeImportInvalidFormat,
				Message: "expected a date as dd/mm/yyyy", Value: v.MeetingDate})
			continue
		}
		degree, _ := strconv.Atoi(strings.TrimSpace(v.Degree))
		status, _ := csvimport.AttendanceFromSheet(v.Status)

		key := fmt.Sprintf("%s|%d|%s", date.Format("2006-01-02"), degree, member.ID)
		if seen[key] {
			errs.AddDuplicateError(row.Line, "ID_H", v.Number)
			continue
		}
		seen[key] = true

		rec, err := attendance.NewRecord(date, membership.Degree(degree), member.ID, status, v.Note)
		if err != nil {
			addDomainError(errs, row.Line, err)
			continue
		}
		records = append(records, rec)
	}

	return s.commit(ctx, csvimport.SheetAttendance, len(rows), len(records), errs, func(ctx context.Context) error {
		return s.records.SaveBatch(ctx, records)
	})
}

// ImportCashBook loads the LIBRO_CAJA tab. Income rows carry Entrada only and
// expense rows Salida only.
func (s *Service) ImportCashBook(ctx context.Context, r io.Reader) (*Result, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "import", "cash_book")
	defer span.End()

	rows, errs, err := csvimport.ReadSheet[csvimport.CashBookRow](s.decoder, csvimport.SheetCashBook, r)
	if err != nil {
		return nil, err
	}

	entries := make([]*cashbook.Entry, 0, len(rows))
	for _, row := range rows {
		v := row.Value
		date, err := s.decoder.ParseDate(v.Date)
		if err != nil {
			errs.Add(csvimport.RowError{Row: row.Line, Column: "Fecha", Code: csvimport.ErrCodeImportInvalidFormat,
				Message: "expected a date as dd/mm/yyyy", Value: v.Date})
			continue
		}
		in, errIn := s.decoder.ParseMoney(v.In)
		out, errOut := s.decoder.ParseMoney(v.Out)
		if errIn != nil || errOut != nil {
			errs.Add(csvimport.RowError{Row: row.Line, Code: csvimport.ErrCodeImportInvalidType,
				Message: "expected non-negative amounts"})
			continue
		}
		category, _ := csvimport.CategoryFromSheet(v.Category)

		var entry *cashbook.Entry
		switch {
		case category == cashbook.CategoryIncome && out.IsZero():
			entry, err = cashbook.NewIncome(date, v.Concept, in, strings.TrimSpace(v.Reference))
		case category.IsExpense() && in.IsZero():
			entry, err = cashbook.NewExpense(date, v.Concept, category, out)
			if err == nil {
				entry.Reference = strings.TrimSpace(v.Reference)
			}
		default:
			errs.Add(csvimport.RowError{Row: row.Line, Column: "Categoria", Code: csvimport.ErrCodeImportInvalidValue,
				Message: "income rows use Entrada and expense rows use Salida", Value: v.Category})
			continue
		}
		if err != nil {
			addDomainError(errs, row.Line, err)
			continue
		}
		entries = append(entries, entry)
	}

	return s.commit(ctx, csvimport.SheetCashBook, len(rows), len(entries), errs, func(ctx context.Context) error {
		for _, e := range entries {
			if err := s.book.Save(ctx, e); err != nil {
				return fmt.Errorf("save cash book line: %w", err)
			}
		}
		return nil
	})
}

// commit writes the sheet only when no row was rejected
func (s *Service) commit(
	ctx context.Context,
	sheet string,
	decoded, valid int,
	errs *csvimport.ErrorCollection,
	write func(ctx context.Context) error,
) (*Result, error) {
	// Rows dropped by the decoder never reach the service but are counted in errs.
	total := decoded
	if dropped := errs.RowCount() - (decoded - valid); dropped > 0 {
		total += dropped
	}
	result := &Result{
		Sheet:       sheet,
		Total:       total,
		Rejected:    errs.RowCount(),
		Errors:      errs.Errors(),
		TotalErrors: errs.TotalCount(),
		Truncated:   errs.IsTruncated(),
	}
	log := logger.ForContext(ctx, s.logger).With(zap.String("sheet", sheet))

	if errs.HasErrors() {
		s.metrics.ImportRows(sheet, 0, result.Rejected)
		log.Warn("Import rejected",
			zap.Int("rows", result.Total),
			zap.Int("rejected_rows", result.Rejected),
			zap.Int("errors", result.TotalErrors),
		)
		return result, nil
	}
	if valid == 0 {
		log.Info("Import had no rows")
		return result, nil
	}

	if err := s.uow.Do(ctx, write); err != nil {
		return nil, fmt.Errorf("import %s: %w", sheet, err)
	}
	result.Imported = valid
	s.metrics.ImportRows(sheet, valid, 0)
	log.Info("Import committed", zap.Int("rows", valid))
	return result, nil
}

// memberResolver maps ID_H cells to members, caching lookups per import
func (s *Service) memberResolver(ctx context.Context) func(cell string) (*membership.Member, bool) {
	cache := make(map[int]*membership.Member)
	return func(cell string) (*membership.Member, bool) {
		number, err := strconv.Atoi(strings.TrimSpace(cell))
		if err != nil {
			return nil, false
		}
		if m, ok := cache[number]; ok {
			return m, m != nil
		}
		m, err := s.members.FindByNumber(ctx, number)
		if err != nil {
			m = nil
		}
		cache[number] = m
		return m, m != nil
	}
}

func addDomainError(errs *csvimport.ErrorCollection, line int, err error) {
	code := csvimport.ErrCodeImportInvalidValue
	if shared.CodeOf(err) == "INVALID_AMOUNT" {
		code = csvimport.ErrCodeImportInvalidType
	}
	errs.Add(csvimport.RowError{Row: line, Code: code, Message: err.Error()})
}
