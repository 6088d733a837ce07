package attendance

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/logia/portal/internal/domain/membership"
	"github.com/logia/portal/internal/domain/shared"
)

// Status is the mark given to a member at a meeting
type Status string

const (
	StatusPresent      Status = "PRESENT"
	StatusAbsent       Status = "ABSENT"
	StatusExcused      Status = "EXCUSED"
	StatusLate         Status = "LATE"
	StatusOnCommission Status = "ON_COMMISSION"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusExcused, StatusLate, StatusOnCommission:
		return true
	}
	return false
}

// Record is one member's mark at one meeting
type Record struct {
	shared.BaseEntity
	MeetingDate time.Time
	Degree      membership.Degree
	MemberID    uuid.UUID
	Status      Status
	Note        string
}

// NewRecord creates a validated attendance record
func NewRecord(meetingDate time.Time, degree membership.Degree, memberID uuid.UUID, status Status, note string) (*Record, error) {
	if meetingDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Meeting date is required")
	}
	if !degree.IsValid() {
		return nil, shared.NewDomainError("INVALID_DEGREE", "Meeting degree must be 1, 2 or 3")
	}
	if memberID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Member is required")
	}
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown attendance status")
	}
	y, m, d := meetingDate.Date()
	return &Record{
		BaseEntity:  shared.NewBaseEntity(),
		MeetingDate: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Degree:      degree,
		MemberID:    memberID,
		Status:      status,
		Note:        strings.TrimSpace(note),
	}, nil
}

// Convoked returns the members expected at a meeting of the given degree:
// active members holding at least that degree.
func Convoked(members []membership.Member, degree membership.Degree) []membership.Member {
	out := make([]membership.Member, 0, len(members))
	for _, m := range members {
		if m.IsActive() && m.Degree >= degree {
			out = append(out, m)
		}
	}
	return out
}
