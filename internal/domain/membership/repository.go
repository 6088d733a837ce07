package membership

import (
	"context"

	"github.com/google/uuid"
)

// MemberRepository persists members
type MemberRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Member, error)
	FindByNumber(ctx context.Context, number int) (*Member, error)
	FindByUsername(ctx context.Context, username string) (*Member, error)
	// FindAll returns members ordered by full name
	FindAll(ctx context.Context) ([]Member, error)
	FindActive(ctx context.Context) ([]Member, error)
	// NextNumber returns one past the highest member number in use
	NextNumber(ctx context.Context) (int, error)
	Save(ctx context.Context, member *Member) error
}
