package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/logia/portal/internal/domain/attendance"
	"github.com/logia/portal/internal/domain/cashbook"
	"github.com/logia/portal/internal/domain/membership"
	"github.com/logia/portal/internal/domain/shared"
	"github.com/logia/portal/internal/domain/shared/valueobject"
	"github.com/logia/portal/internal/domain/treasury"
	"github.com/logia/portal/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every pooled connection to :memory: would be a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestMember(t *testing.T, number int, name string, degree membership.Degree) *membership.Member {
	t.Helper()
	return &membership.Member{
		BaseEntity:   shared.NewBaseEntity(),
		Number:       number,
		FullName:     name,
		Username:     uuid.NewString()[:8],
		PasswordHash: "$2a$04$placeholder",
		Role:         membership.RoleMember,
		Degree:       degree,
		Status:       membership.StatusActive,
	}
}

func TestGormMemberRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormMemberRepository(db)
	ctx := context.Background()

	t.Run("next number starts at one", func(t *testing.T) {
		n, err := repo.NextNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	zeta := newTestMember(t, 4, "Zeta", membership.DegreeMaster)
	alfa := newTestMember(t, 9, "Alfa", membership.DegreeApprentice)
	alfa.Username = "alfa"
	alfa.Dossier.BloodType = "O+"
	require.NoError(t, repo.Save(ctx, zeta))
	require.NoError(t, repo.Save(ctx, alfa))

	t.Run("finds by id number and username", func(t *testing.T) {
		found, err := repo.FindByID(ctx, alfa.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alfa", found.FullName)
		assert.Equal(t, "O+", found.Dossier.BloodType)

		found, err = repo.FindByNumber(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, zeta.ID, found.ID)

		found, err = repo.FindByUsername(ctx, " ALFA ")
		require.NoError(t, err)
		assert.Equal(t, alfa.ID, found.ID)
	})

	t.Run("missing member is not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("lists by name and filters active", func(t *testing.T) {
		zeta.Deactivate()
		require.NoError(t, repo.Save(ctx, zeta))

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "Alfa", all[0].FullName)

		active, err := repo.FindActive(ctx)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, alfa.ID, active[0].ID)
	})

	t.Run("next number is max plus one", func(t *testing.T) {
		n, err := repo.NextNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, 10, n)
	})

	t.Run("duplicate number is rejected", func(t *testing.T) {
		dup := newTestMember(t, 9, "Dup", membership.DegreeMaster)
		assert.ErrorIs(t, repo.Save(ctx, dup), shared.ErrAlreadyExists)
	})
}

func TestGormLedgerRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLedgerRepository(db)
	ctx := context.Background()
	member := uuid.New()
	other := uuid.New()

	late, err := treasury.NewCharge(member, date(2024, 3, 1), "Dues March", valueobject.MustMoney("450"))
	require.NoError(t, err)
	early, err := treasury.NewCharge(member, date(2024, 1, 1), "Dues January", valueobject.MustMoney("450"))
	require.NoError(t, err)
	pay, err := treasury.NewPayment(member, date(2024, 2, 1), "Transfer", valueobject.MustMoney("500.50"))
	require.NoError(t, err)
	foreign, err := treasury.NewCharge(other, date(2024, 1, 1), "Dues January", valueobject.MustMoney("450"))
	require.NoError(t, err)

	require.NoError(t, repo.Append(ctx, &late.LedgerEntry, &foreign.LedgerEntry))
	require.NoError(t, repo.Append(ctx, &early.LedgerEntry, &pay.LedgerEntry))

	t.Run("assigns increasing sequences", func(t *testing.T) {
		assert.Less(t, late.Sequence, foreign.Sequence)
		assert.Less(t, foreign.Sequence, early.Sequence)
		assert.Less(t, early.Sequence, pay.Sequence)
	})

	t.Run("returns recording order, not date order", func(t *testing.T) {
		entries, err := repo.FindByMember(ctx, member)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "Dues March", entries[0].Label)
		assert.Equal(t, "Dues January", entries[1].Label)
		assert.Equal(t, treasury.EntryKindPayment, entries[2].Kind)
		assert.Equal(t, "500.50", entries[2].Amount.StringFixed())
		assert.True(t, entries[0].Date.Equal(date(2024, 3, 1)))
	})

	t.Run("groups every member", func(t *testing.T) {
		grouped, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, grouped, 2)
		assert.Len(t, grouped[member], 3)
		assert.Len(t, grouped[other], 1)
	})

	t.Run("rejects invalid entries before writing", func(t *testing.T) {
		bad := treasury.LedgerEntry{MemberID: member, Kind: treasury.EntryKindCharge, Date: date(2024, 1, 1), Amount: valueobject.MustMoney("-1")}
		assert.ErrorIs(t, repo.Append(ctx, &bad), shared.ErrInvalidAmount)
	})
}

func TestUnitOfWork(t *testing.T) {
	db := setupTestDB(t)
	uow := NewUnitOfWork(db)
	ledger := NewGormLedgerRepository(db)
	book := NewGormCashBookRepository(db)
	ctx := context.Background()
	member := uuid.New()

	t.Run("rolls back every write on error", func(t *testing.T) {
		pay, err := treasury.NewPayment(member, date(2024, 2, 1), "Transfer", valueobject.MustMoney("100"))
		require.NoError(t, err)

		err = uow.Do(ctx, func(ctx context.Context) error {
			if err := ledger.Append(ctx, &pay.LedgerEntry); err != nil {
				return err
			}
			return errors.New("cash book unavailable")
		})
		require.Error(t, err)

		entries, err := ledger.FindByMember(ctx, member)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("commits both writes", func(t *testing.T) {
		pay, err := treasury.NewPayment(member, date(2024, 2, 1), "Transfer", valueobject.MustMoney("100"))
		require.NoError(t, err)
		income, err := cashbook.NewIncome(date(2024, 2, 1), "Transfer", valueobject.MustMoney("100"), "member 1")
		require.NoError(t, err)

		require.NoError(t, uow.Do(ctx, func(ctx context.Context) error {
			if err := ledger.Append(ctx, &pay.LedgerEntry); err != nil {
				return err
			}
			return uow.Do(ctx, func(ctx context.Context) error {
				return book.Save(ctx, income)
			})
		}))

		entries, err := ledger.FindByMember(ctx, member)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
		lines, err := book.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, lines, 1)
	})
}

func TestGormCashBookRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCashBookRepository(db)
	ctx := context.Background()

	in, err := cashbook.NewIncome(date(2024, 1, 5), "Dues", valueobject.MustMoney("900"), "")
	require.NoError(t, err)
	out, err := cashbook.NewExpense(date(2024, 1, 2), "Rent", cashbook.CategoryOperating, valueobject.MustMoney("300.25"))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, in))
	require.NoError(t, repo.Save(ctx, out))

	lines, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "Rent", lines[0].Concept)
	bal, err := cashbook.Balance(valueobject.MXN, lines)
	require.NoError(t, err)
	assert.Equal(t, "599.75", bal.StringFixed())
}

func TestGormAttendanceRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAttendanceRepository(db)
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()
	meeting := date(2024, 4, 4)

	mark := func(member uuid.UUID, status attendance.Status) *attendance.Record {
		r, err := attendance.NewRecord(meeting, membership.DegreeApprentice, member, status, "")
		require.NoError(t, err)
		return r
	}

	require.NoError(t, repo.SaveBatch(ctx, []*attendance.Record{mark(a, attendance.StatusAbsent), mark(b, attendance.StatusPresent)}))

	t.Run("retaking a roll call overwrites", func(t *testing.T) {
		require.NoError(t, repo.SaveBatch(ctx, []*attendance.Record{mark(a, attendance.StatusExcused)}))

		records, err := repo.FindByMember(ctx, a)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, attendance.StatusExcused, records[0].Status)
	})

	t.Run("groups by member", func(t *testing.T) {
		grouped, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, grouped, 2)
		assert.Equal(t, attendance.StatusPresent, grouped[b][0].Status)
	})
}
