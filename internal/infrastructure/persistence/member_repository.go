package persistence

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/logia/portal/internal/domain/membership"
	"github.com/logia/portal/internal/domain/shared"
	"github.com/logia/portal/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormMemberRepository implements membership.MemberRepository using GORM
type GormMemberRepository struct {
	db *gorm.DB
}

// NewGormMemberRepository creates a new GormMemberRepository
func NewGormMemberRepository(db *gorm.DB) *GormMemberRepository {
	return &GormMemberRepository{db: db}
}

func (r *GormMemberRepository) findOne(ctx context.Context, query string, args ...any) (*membership.Member, error) {
	var model models.MemberModel
	if err := conn(ctx, r.db).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByID finds a member by ID
func (r *GormMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*membership.Member, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByNumber finds a member by lodge number
func (r *GormMemberRepository) FindByNumber(ctx context.Context, number int) (*membership.Member, error) {
	return r.findOne(ctx, "number = ?", number)
}

// FindByUsername finds a member by login name
func (r *GormMemberRepository) FindByUsername(ctx context.Context, username string) (*membership.Member, error) {
	return r.findOne(ctx, "username = ?", strings.ToLower(strings.TrimSpace(username)))
}

// FindAll returns every member ordered by name
func (r *GormMemberRepository) FindAll(ctx context.Context) ([]membership.Member, error) {
	return r.findMany(conn(ctx, r.db))
}

// FindActive returns active members ordered by name
func (r *GormMemberRepository) FindActive(ctx context.Context) ([]membership.Member, error) {
	return r.findMany(conn(ctx, r.db).Where("status = ?", string(membership.StatusActive)))
}

func (r *GormMemberRepository) findMany(query *gorm.DB) ([]membership.Member, error) {
	var memberModels []models.MemberModel
	if err := query.Order("full_name ASC").Order("number ASC").Find(&memberModels).Error; err != nil {
		return nil, err
	}
	members := make([]membership.Member, len(memberModels))
	for i := range memberModels {
		members[i] = *memberModels[i].ToDomain()
	}
	return members, nil
}

// NextNumber returns one past the highest member number
func (r *GormMemberRepository) NextNumber(ctx context.Context) (int, error) {
	var maxNumber sql.NullInt64
	if err := conn(ctx, r.db).Model(&models.MemberModel{}).Select("MAX(number)").Row().Scan(&maxNumber); err != nil {
		return 0, err
	}
	return int(maxNumber.Int64) + 1, nil
}

// Save creates or updates a member
func (r *GormMemberRepository) Save(ctx context.Context, member *membership.Member) error {
	model := models.MemberModelFromDomain(member)
	if err := conn(ctx, r.db).Save(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

var _ membership.MemberRepository = (*GormMemberRepository)(nil)
