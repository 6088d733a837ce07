package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/logia/portal/internal/domain/treasury"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db, mock
}

func TestGormLedgerRepository_FindByMember_Postgres(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormLedgerRepository(db)
	member := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows([]string{"seq", "id", "member_id", "entry_date", "label", "amount", "currency", "kind", "created_at", "updated_at"}).
		AddRow(7, uuid.NewString(), member.String(), time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), "Dues May", "450.00", "MXN", "CHARGE", now, now).
		AddRow(9, uuid.NewString(), member.String(), time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), "Cash", "200.00", "MXN", "PAYMENT", now, now)

	mock.ExpectQuery(`SELECT \* FROM "ledger_entries" WHERE member_id = \$1 ORDER BY seq ASC`).
		WithArgs(member.String()).
		WillReturnRows(rows)

	entries, err := repo.FindByMember(context.Background(), member)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(7), entries[0].Sequence)
	assert.Equal(t, treasury.EntryKindCharge, entries[0].Kind)
	assert.Equal(t, "200.00", entries[1].Amount.StringFixed())
	assert.NoError(t, mock.ExpectationsWereMet())
}
