package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/logia/portal/internal/domain/shared"
	"github.com/logia/portal/internal/domain/shared/valueobject"
	"github.com/logia/portal/internal/domain/treasury"
	"github.com/shopspring/decimal"
)

// LedgerEntryModel is the persistence model for treasury.LedgerEntry.
// Sequence is the surrogate key; its insertion order is the recording order.
type LedgerEntryModel struct {
	Sequence  int64           `gorm:"column:seq;primaryKey;autoIncrement"`
	ID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	MemberID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	EntryDate time.Time       `gorm:"type:date;not null"`
	Label     string          `gorm:"type:varchar(200);not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency  string          `gorm:"type:varchar(3);not null;default:'MXN'"`
	Kind      string          `gorm:"type:varchar(10);not null"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// ToDomain converts the model to a domain entry
func (m *LedgerEntryModel) ToDomain() (treasury.LedgerEntry, error) {
	amount, err := valueobject.NewMoney(m.Amount, valueobject.Currency(m.Currency))
	if err != nil {
		return treasury.LedgerEntry{}, err
	}
	return treasury.LedgerEntry{
		BaseEntity: shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		MemberID:   m.MemberID,
		Sequence:   m.Sequence,
		Date:       m.EntryDate.UTC(),
		Label:      m.Label,
		Amount:     amount,
		Kind:       treasury.EntryKind(m.Kind),
	}, nil
}

// LedgerEntryModelFromDomain creates a new model; Sequence is assigned on insert
func LedgerEntryModelFromDomain(e *treasury.LedgerEntry) *LedgerEntryModel {
	return &LedgerEntryModel{
		ID:        e.ID,
		MemberID:  e.MemberID,
		EntryDate: e.Date,
		Label:     e.Label,
		Amount:    e.Amount.Amount(),
		Currency:  string(e.Amount.Currency()),
		Kind:      string(e.Kind),
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
