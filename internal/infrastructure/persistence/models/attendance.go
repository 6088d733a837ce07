package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/logia/portal/internal/domain/attendance"
	"github.com/logia/portal/internal/domain/membership"
)

// AttendanceRecordModel is the persistence model for attendance.Record
type AttendanceRecordModel struct {
	BaseModel
	MeetingDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_attendance_meeting_member"`
	Degree      int       `gorm:"not null;uniqueIndex:idx_attendance_meeting_member"`
	MemberID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_attendance_meeting_member"`
	Status      string    `gorm:"type:varchar(20);not null"`
	Note        string    `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (AttendanceRecordModel) TableName() string {
	return "attendance_records"
}

// ToDomain converts the model to a domain record
func (m *AttendanceRecordModel) ToDomain() attendance.Record {
	return attendance.Record{
		BaseEntity:  m.BaseModel.ToDomain(),
		MeetingDate: m.MeetingDate.UTC(),
		Degree:      membership.Degree(m.Degree),
		MemberID:    m.MemberID,
		Status:      attendance.Status(m.Status),
		Note:        m.Note,
	}
}

// AttendanceRecordModelFromDomain creates a new model from a domain record
func AttendanceRecordModelFromDomain(r *attendance.Record) *AttendanceRecordModel {
	m := &AttendanceRecordModel{
		MeetingDate: r.MeetingDate,
		Degree:      int(r.Degree),
		MemberID:    r.MemberID,
		Status:      string(r.Status),
		Note:        r.Note,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}
