package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/logia/portal/internal/domain/treasury"
	"github.com/logia/portal/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLedgerRepository implements treasury.LedgerRepository using GORM
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// FindByMember returns a member's entries in recording order
func (r *GormLedgerRepository) FindByMember(ctx context.Context, memberID uuid.UUID) ([]treasury.LedgerEntry, error) {
	var entryModels []models.LedgerEntryModel
	if err := conn(ctx, r.db).
		Where("member_id = ?", memberID).
		Order("seq ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]treasury.LedgerEntry, 0, len(entryModels))
	for i := range entryModels {
		e, err := entryModels[i].ToDomain()
		if err != nil {
			return nil, fmt.Errorf("ledger entry %s: %w", entryModels[i].ID, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// FindAll returns every entry grouped by member, each group in recording order
func (r *GormLedgerRepository) FindAll(ctx context.Context) (map[uuid.UUID][]treasury.LedgerEntry, error) {
	var entryModels []models.LedgerEntryModel
	if err := conn(ctx, r.db).Order("seq ASC").Find(&entryModels).Error; err != nil {
		return nil, err
	}

	grouped := make(map[uuid.UUID][]treasury.LedgerEntry)
	for i := range entryModels {
		e, err := entryModels[i].ToDomain()
		if err != nil {
			return nil, fmt.Errorf("ledger entry %s: %w", entryModels[i].ID, err)
		}
		grouped[e.MemberID] = append(grouped[e.MemberID], e)
	}
	return grouped, nil
}

// Append inserts entries in the given order and writes the assigned
// sequence back onto each entry
func (r *GormLedgerRepository) Append(ctx context.Context, entries ...*treasury.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return err
		}
	}

	db := conn(ctx, r.db)
	for _, e := range entries {
		model := models.LedgerEntryModelFromDomain(e)
		if err := db.Create(model).Error; err != nil {
			return fmt.Errorf("append ledger entry: %w", err)
		}
		e.Sequence = model.Sequence
	}
	return nil
}

var _ treasury.LedgerRepository = (*GormLedgerRepository)(nil)
