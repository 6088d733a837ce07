package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/logia/portal/internal/domain/attendance"
	"github.com/logia/portal/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAttendanceRepository implements attendance.RecordRepository using GORM
type GormAttendanceRepository struct {
	db *gorm.DB
}

// NewGormAttendanceRepository creates a new GormAttendanceRepository
func NewGormAttendanceRepository(db *gorm.DB) *GormAttendanceRepository {
	return &GormAttendanceRepository{db: db}
}

// SaveBatch stores a roll call. Taking the same roll call again overwrites
// the earlier marks.
func (r *GormAttendanceRepository) SaveBatch(ctx context.Context, records []*attendance.Record) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]*models.AttendanceRecordModel, len(records))
	for i, rec := range records {
		rows[i] = models.AttendanceRecordModelFromDomain(rec)
	}
	return conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "meeting_date"}, {Name: "degree"}, {Name: "member_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "note", "updated_at"}),
	}).Create(&rows).Error
}

// FindByMember returns a member's marks, oldest meeting first
func (r *GormAttendanceRepository) FindByMember(ctx context.Context, memberID uuid.UUID) ([]attendance.Record, error) {
	var rows []models.AttendanceRecordModel
	if err := conn(ctx, r.db).
		Where("member_id = ?", memberID).
		Order("meeting_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]attendance.Record, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// FindAll returns every mark grouped by member
func (r *GormAttendanceRepository) FindAll(ctx context.Context) (map[uuid.UUID][]attendance.Record, error) {
	var rows []models.AttendanceRecordModel
	if err := conn(ctx, r.db).Order("meeting_date ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	grouped := make(map[uuid.UUID][]attendance.Record)
	for i := range rows {
		grouped[rows[i].MemberID] = append(grouped[rows[i].MemberID], rows[i].ToDomain())
	}
	return grouped, nil
}

var _ attendance.RecordRepository = (*GormAttendanceRepository)(nil)
