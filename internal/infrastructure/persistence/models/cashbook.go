package models

import (
	"time"

	"github.com/logia/portal/internal/domain/cashbook"
	"github.com/logia/portal/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CashBookEntryModel is the persistence model for cashbook.Entry
type CashBookEntryModel struct {
	BaseModel
	EntryDate time.Time       `gorm:"type:date;not null;index"`
	Concept   string          `gorm:"type:varchar(300);not null"`
	Category  string          `gorm:"type:varchar(20);not null"`
	AmountIn  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	AmountOut decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Currency  string          `gorm:"type:varchar(3);not null;default:'MXN'"`
	Reference string          `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (CashBookEntryModel) TableName() string {
	return "cash_book_entries"
}

// ToDomain converts the model to a domain entry
func (m *CashBookEntryModel) ToDomain() (cashbook.Entry, error) {
	currency := valueobject.Currency(m.Currency)
	in, err := valueobject.NewMoney(m.AmountIn, currency)
	if err != nil {
		return cashbook.Entry{}, err
	}
	out, err := valueobject.NewMoney(m.AmountOut, currency)
	if err != nil {
		return cashbook.Entry{}, err
	}
	return cashbook.Entry{
		BaseEntity: m.BaseModel.ToDomain(),
		Date:       m.EntryDate.UTC(),
		Concept:    m.Concept,
		Category:   cashbook.Category(m.Category),
		In:         in,
		Out:        out,
		Reference:  m.Reference,
	}, nil
}

// CashBookEntryModelFromDomain creates a new model from a domain entry
func CashBookEntryModelFromDomain(e *cashbook.Entry) *CashBookEntryModel {
	m := &CashBookEntryModel{
		EntryDate: e.Date,
		Concept:   e.Concept,
		Category:  string(e.Category),
		AmountIn:  e.In.Amount(),
		AmountOut: e.Out.Amount(),
		Currency:  string(e.In.Currency()),
		Reference: e.Reference,
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	return m
}
