package importapp

import (
	"context"
	"strings"
	"testing"

	"github.com/logia/portal/internal/domain/attendance"
	"github.com/logia/portal/internal/domain/membership"
	"github.com/logia/portal/internal/domain/shared"
	"github.com/logia/portal/internal/domain/shared/valueobject"
	"github.com/logia/portal/internal/domain/treasury"
	csvimport "github.com/logia/portal/internal/infrastructure/import"
	"github.com/logia/portal/internal/infrastructure/metrics"
	"github.com/logia/portal/internal/infrastructure/persistence"
	"github.com/logia/portal/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const directory = `ID_H,Nombre_Completo,Usuario,Password,Rol,Grado_Actual,Estatus,Profesion,Fecha_Inic
1,Juan Perez,jperez,5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8,Tesorero,3,Activo,Contador,15/03/2010
2,Luis Gomez,lgomez,5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8,,1,Activo,,
3,Pedro Ruiz,pruiz,5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8,,3,Inactivo,,
`

type harness struct {
	ctx     context.Context
	members *persistence.GormMemberRepository
	ledger  *persistence.GormLedgerRepository
	records *persistence.GormAttendanceRepository
	book    *persistence.GormCashBookRepository
	svc     *Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	h := &harness{
		ctx:     context.Background(),
		members: persistence.NewGormMemberRepository(db),
		ledger:  persistence.NewGormLedgerRepository(db),
		records: persistence.NewGormAttendanceRepository(db),
		book:    persistence.NewGormCashBookRepository(db),
	}
	h.svc = NewService(h.members, h.ledger, h.records, h.book,
		persistence.NewUnitOfWork(db),
		csvimport.NewDecoder("02/01/2006", valueobject.MXN),
		metrics.New(), zap.NewNop())
	return h
}

func (h *harness) loadDirectory(t *testing.T) {
	t.Helper()
	result, err := h.svc.ImportMembers(h.ctx, strings.NewReader(directory))
	require.NoError(t, err)
	require.True(t, result.Committed(), "%+v", result.Errors)
}

func TestImportMembers(t *testing.T) {
	t.Run("restores members with legacy hashes", func(t *testing.T) {
		h := newHarness(t)
		h.loadDirectory(t)

		m, err := h.members.FindByNumber(h.ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, membership.RoleTreasurer, m.Role)
		assert.True(t, m.NeedsRehash())
		assert.True(t, m.VerifyPassword("password"))
		assert.True(t, m.MustResetPassword)
		assert.Equal(t, "Contador", m.Dossier.Profession)
		require.NotNil(t, m.Dossier.InitiationDate)
		assert.Equal(t, 2010, m.Dossier.InitiationDate.Year())

		inactive, err := h.members.FindByNumber(h.ctx, 3)
		require.NoError(t, err)
		assert.False(t, inactive.IsActive())
	})

	t.Run("duplicates reject the whole sheet", func(t *testing.T) {
		h := newHarness(t)
		data := "ID_H,Nombre_Completo,Usuario,Password,Grado_Actual\n" +
			"1,Juan,jperez,abc,3\n" +
			"1,Otro,otro,abc,3\n" +
			"2,Luis,JPEREZ,abc,1\n"

		result, err := h.svc.ImportMembers(h.ctx, strings.NewReader(data))
		require.NoError(t, err)
		assert.False(t, result.Committed())
		assert.Equal(t, 3, result.Total)
		assert.Equal(t, 2, result.Rejected)
		assert.Equal(t, csvimport.ErrCodeImportDuplicateInFile, result.Errors[0].Code)

		all, err := h.members.FindAll(h.ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("already registered numbers are rejected", func(t *testing.T) {
		h := newHarness(t)
		h.loadDirectory(t)

		result, err := h.svc.ImportMembers(h.ctx, strings.NewReader(directory))
		require.NoError(t, err)
		assert.Equal(t, 3, result.Rejected)
		assert.Equal(t, 0, result.Imported)
	})
}

func TestImportLedger(t *testing.T) {
	t.Run("appends in file order", func(t *testing.T) {
		h := newHarness(t)
		h.loadDirectory(t)

		data := "Fecha,ID_H,Concepto,Tipo,Monto\n" +
			"05/01/2024,1,Cuota enero,Cargo,450\n" +
			"03/01/2024,1,Abono,Abono,\"1,000.00\"\n" +
			"05/02/2024,1,Cuota febrero,Cargo,$ 450\n" +
			"05/01/2024,2,Cuota enero,Cargo,450\n"

		result, err := h.svc.ImportLedger(h.ctx, strings.NewReader(data), false)
		require.NoError(t, err)
		assert.True(t, result.Committed())
		assert.Equal(t, 4, result.Imported)

		juan, err := h.members.FindByNumber(h.ctx, 1)
		require.NoError(t, err)
		entries, err := h.ledger.FindByMember(h.ctx, juan.ID)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "Cuota enero", entries[0].Label)
		assert.Equal(t, treasury.EntryKindPayment, entries[1].Kind)
		assert.Equal(t, "1000.00", entries[1].Amount.StringFixed())
		assert.Less(t, entries[0].Sequence, entries[1].Sequence)
		assert.Less(t, entries[1].Sequence, entries[2].Sequence)
	})

	t.Run("unknown member rejects the sheet", func(t *testing.T) {
		h := newHarness(t)
		h.loadDirectory(t)

		data := "Fecha,ID_H,Concepto,Tipo,Monto\n" +
			"05/01/2024,1,Cuota,Cargo,450\n" +
			"05/01/2024,99,Cuota,Cargo,450\n" +
			"05/01/2024,1,Cuota,Cargo,-5\n"

		result, err := h.svc.ImportLedger(h.ctx, strings.NewReader(data), false)
		require.NoError(t, err)
		assert.Equal(t, 3, result.Total)
		assert.Equal(t, 2, result.Rejected)
		assert.Equal(t, 0, result.Imported)

		all, err := h.ledger.FindAll(h.ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("non-empty ledger needs append", func(t *testing.T) {
		h := newHarness(t)
		h.loadDirectory(t)
		data := "Fecha,ID_H,Concepto,Tipo,Monto\n05/01/2024,1,Cuota,Cargo,450\n"

		_, err := h.svc.ImportLedger(h.ctx, strings.NewReader(data), false)
		require.NoError(t, err)

		_, err = h.svc.ImportLedger(h.ctx, strings.NewReader(data), false)
		assert.ErrorIs(t, err, shared.ErrInvalidState)

		result, err := h.svc.ImportLedger(h.ctx, strings.NewReader(data), true)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Imported)
	})
}

func TestImportAttendance(t *testing.T) {
	h := newHarness(t)
	h.loadDirectory(t)

	data := "Fecha_Tenida,Grado,ID_H,Estado,Nota\n" +
		"04/01/2024,1,1,Presente,\n" +
		"04/01/2024,1,2,Comisión,Visita a otra logia\n" +
		"11/01/2024,1,2,Falta,\n"

	result, err := h.svc.ImportAttendance(h.ctx, strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)

	luis, err := h.members.FindByNumber(h.ctx, 2)
	require.NoError(t, err)
	records, err := h.records.FindByMember(h.ctx, luis.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, attendance.StatusOnCommission, records[0].Status)
	assert.Equal(t, "Visita a otra logia", records[0].Note)

	dup := "Fecha_Tenida,Grado,ID_H,Estado\n04/01/2024,1,1,Presente\n04/01/2024,1,1,Falta\n"
	result, err = h.svc.ImportAttendance(h.ctx, strings.NewReader(dup))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Rejected)
}

func TestImportCashBook(t *testing.T) {
	h := newHarness(t)

	data := "Fecha,Concepto,Categoria,Entrada,Salida,Referencia\n" +
		"02/01/2024,Cuotas enero,Ingreso,\"2,700.00\",,recibo 12\n" +
		"10/01/2024,Renta,Operativo,,1500,\n" +
		"15/01/2024,Per capita,GL,,800,\n"

	result, err := h.svc.ImportCashBook(h.ctx, strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)

	entries, err := h.book.FindAll(h.ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "recibo 12", entries[0].Reference)

	mixed := "Fecha,Concepto,Categoria,Entrada,Salida\n20/01/2024,Cena,Evento,100,200\n"
	result, err = h.svc.ImportCashBook(h.ctx, strings.NewReader(mixed))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Rejected)
	assert.Equal(t, "Categoria", result.Errors[0].Column)
}
