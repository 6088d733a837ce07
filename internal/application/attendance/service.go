package attendance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/logia/portal/internal/domain/attendance"
	"github.com/logia/portal/internal/domain/membership"
	"github.com/logia/portal/internal/domain/shared"
	"github.com/logia/portal/internal/infrastructure/logger"
	"github.com/logia/portal/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// RollCallInput is one meeting's marks. Convoked members without a mark are
// recorded absent.
type RollCallInput struct {
	MeetingDate time.Time
	Degree      membership.Degree
	Marks       map[uuid.UUID]attendance.Status
	Notes       map[uuid.UUID]string
}

// RollCallResult summarises a stored roll call
type RollCallResult struct {
	MeetingDate time.Time
	Degree      membership.Degree
	Recorded    int
	Attended    int
}

// RecordLine is one mark in a member's history
type RecordLine struct {
	MeetingDate time.Time
	Degree      membership.Degree
	Status      attendance.Status
	Note        string
}

// MemberRateResult is a member's attendance under both rules
type MemberRateResult struct {
	MemberID uuid.UUID
	Personal attendance.Rate
	Official attendance.Rate
	History  []RecordLine
}

// ReportLine is one member in the lodge attendance report
type ReportLine struct {
	MemberID     uuid.UUID
	MemberNumber int
	MemberName   string
	Degree       membership.Degree
	Rate         attendance.Rate
}

// Service takes roll calls and computes attendance rates
type Service struct {
	records attendance.RecordRepository
	members membership.MemberRepository
	logger  *zap.Logger
}

// NewService creates a new attendance service
func NewService(records attendance.RecordRepository, members membership.MemberRepository, logger *zap.Logger) *Service {
	return &Service{records: records, members: members, logger: logger}
}

// TakeRollCall stores a mark for every member convoked to the meeting
func (s *Service) TakeRollCall(ctx context.Context, viewer membership.Viewer, input RollCallInput) (*RollCallResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "attendance", "roll_call")
	defer span.End()

	if err := viewer.Require(membership.PermRollCall); err != nil {
		return nil, err
	}
	if !input.Degree.IsValid() {
		return nil, shared.NewDomainError("INVALID_DEGREE", "Meeting degree must be 1, 2 or 3")
	}

	active, err := s.members.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active members: %w", err)
	}
	convoked := attendance.Convoked(active, input.Degree)
	expected := make(map[uuid.UUID]bool, len(convoked))
	for _, m := range convoked {
		expected[m.ID] = true
	}
	for id := range input.Marks {
		if !expected[id] {
			return nil, shared.NewDomainError("INVALID_INPUT",
				fmt.Sprintf("Member %s is not convoked to a degree %d meeting", id, input.Degree))
		}
	}

	records := make([]*attendance.Record, 0, len(convoked))
	result := &RollCallResult{Degree: input.Degree}
	for _, m := range convoked {
		status, ok := input.Marks[m.ID]
		if !ok {
			status = attendance.StatusAbsent
		}
		rec, err := attendance.NewRecord(input.MeetingDate, input.Degree, m.ID, status, input.Notes[m.ID])
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
		if attendance.OfficialRule.Counts(status) {
			result.Attended++
		}
		result.MeetingDate = rec.MeetingDate
	}
	if len(records) == 0 {
		return nil, shared.NewDomainError("INVALID_STATE", "No active member is convoked to this meeting")
	}

	if err := s.records.SaveBatch(ctx, records); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("save roll call: %w", err)
	}
	result.Recorded = len(records)

	logger.ForContext(ctx, s.logger).Info("Roll call recorded",
		zap.Time("meeting_date", result.MeetingDate),
		zap.Int("degree", int(input.Degree)),
		zap.Int("recorded", result.Recorded),
		zap.Int("attended", result.Attended),
	)
	return result, nil
}

// MemberRate returns a member's rate under the personal and official rules
func (s *Service) MemberRate(ctx context.Context, viewer membership.Viewer, memberID uuid.UUID) (*MemberRateResult, error) {
	own := viewer.MemberID == memberID && viewer.Role.Can(membership.PermAttendanceOwn)
	if !own && !viewer.Role.Can(membership.PermAttendanceReport) {
		return nil, shared.ErrForbidden
	}
	if _, err := s.members.FindByID(ctx, memberID); err != nil {
		return nil, err
	}
	records, err := s.records.FindByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("load attendance: %w", err)
	}

	history := make([]RecordLine, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		history = append(history, RecordLine{
			MeetingDate: r.MeetingDate,
			Degree:      r.Degree,
			Status:      r.Status,
			Note:        r.Note,
		})
	}
	return &MemberRateResult{
		MemberID: memberID,
		Personal: attendance.ComputeRate(records, attendance.PersonalRule),
		Official: attendance.ComputeRate(records, attendance.OfficialRule),
		History:  history,
	}, nil
}

// Report lists the official rate of every active member, lowest first
func (s *Service) Report(ctx context.Context, viewer membership.Viewer) ([]ReportLine, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "attendance", "report")
	defer span.End()

	if err := viewer.Require(membership.PermAttendanceReport); err != nil {
		return nil, err
	}
	active, err := s.members.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active members: %w", err)
	}
	grouped, err := s.records.FindAll(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("load attendance: %w", err)
	}

	lines := make([]ReportLine, 0, len(active))
	for _, m := range active {
		lines = append(lines, ReportLine{
			MemberID:     m.ID,
			MemberNumber: m.Number,
			MemberName:   m.FullName,
			Degree:       m.Degree,
			Rate:         attendance.ComputeRate(grouped[m.ID], attendance.OfficialRule),
		})
	}
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Rate.Percent.LessThan(lines[j].Rate.Percent)
	})
	return lines, nil
}
