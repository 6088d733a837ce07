package attendance

import (
	"context"

	"github.com/google/uuid"
)

// RecordRepository persists attendance marks
type RecordRepository interface {
	SaveBatch(ctx context.Context, records []*Record) error
	FindByMember(ctx context.Context, memberID uuid.UUID) ([]Record, error)
	// FindAll returns marks grouped by member
	FindAll(ctx context.Context) (map[uuid.UUID][]Record, error)
}
