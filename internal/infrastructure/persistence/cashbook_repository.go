package persistence

import (
	"context"
	"fmt"

	"github.com/logia/portal/internal/domain/cashbook"
	"github.com/logia/portal/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCashBookRepository implements cashbook.EntryRepository using GORM
type GormCashBookRepository struct {
	db *gorm.DB
}

// NewGormCashBookRepository creates a new GormCashBookRepository
func NewGormCashBookRepository(db *gorm.DB) *GormCashBookRepository {
	return &GormCashBookRepository{db: db}
}

// Save stores a cash book line
func (r *GormCashBookRepository) Save(ctx context.Context, entry *cashbook.Entry) error {
	return conn(ctx, r.db).Create(models.CashBookEntryModelFromDomain(entry)).Error
}

// FindAll returns every line, oldest first
func (r *GormCashBookRepository) FindAll(ctx context.Context) ([]cashbook.Entry, error) {
	var rows []models.CashBookEntryModel
	if err := conn(ctx, r.db).Order("entry_date ASC").Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]cashbook.Entry, 0, len(rows))
	for i := range rows {
		e, err := rows[i].ToDomain()
		if err != nil {
			return nil, fmt.Errorf("cash book entry %s: %w", rows[i].ID, err)
		}
		out = append(out, e)
	}
	return out, nil
}

var _ cashbook.EntryRepository = (*GormCashBookRepository)(nil)
