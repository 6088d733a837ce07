package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appattendance "github.com/logia/portal/internal/application/attendance"
	"github.com/logia/portal/internal/domain/attendance"
	"github.com/logia/portal/internal/domain/membership"
	"github.com/shopspring/decimal"
)

// AttendanceService is the attendance application layer
type AttendanceService interface {
	TakeRollCall(ctx context.Context, viewer membership.Viewer, input appattendance.RollCallInput) (*appattendance.RollCallResult, error)
	MemberRate(ctx context.Context, viewer membership.Viewer, memberID uuid.UUID) (*appattendance.MemberRateResult, error)
	Report(ctx context.Context, viewer membership.Viewer) ([]appattendance.ReportLine, error)
}

// RollCallMark is one member's mark on the roll
type RollCallMark struct {
	MemberID uuid.UUID         `json:"member_id" binding:"required"`
	Status   attendance.Status `json:"status" binding:"required,oneof=PRESENT ABSENT EXCUSED LATE ON_COMMISSION"`
	Note     string            `json:"note" binding:"max=200"`
}

// RollCallRequest records a meeting. Convoked members without a mark are
// recorded ABSENT.
type RollCallRequest struct {
	MeetingDate string            `json:"meeting_date" binding:"required,datetime=2006-01-02"`
	Degree      membership.Degree `json:"degree" binding:"required,min=1,max=3"`
	Marks       []RollCallMark    `json:"marks" binding:"dive"`
}

// RollCallResponse summarises a recorded meeting
type RollCallResponse struct {
	MeetingDate time.Time         `json:"meeting_date"`
	Degree      membership.Degree `json:"degree"`
	Recorded    int               `json:"recorded"`
	Attended    int               `json:"attended"`
}

// RateResponse is an attendance percentage
type RateResponse struct {
	Attended int             `json:"attended"`
	Total    int             `json:"total"`
	Percent  decimal.Decimal `json:"percent"`
}

// AttendanceLineResponse is one meeting in a member's history
type AttendanceLineResponse struct {
	MeetingDate time.Time         `json:"meeting_date"`
	Degree      membership.Degree `json:"degree"`
	Status      attendance.Status `json:"status"`
	Note        string            `json:"note,omitempty"`
}

// MemberRateResponse is a member's attendance
type MemberRateResponse struct {
	MemberID uuid.UUID                `json:"member_id"`
	Personal RateResponse             `json:"personal"`
	Official RateResponse             `json:"official"`
	History  []AttendanceLineResponse `json:"history"`
}

// AttendanceReportLineResponse is one member's official rate
type AttendanceReportLineResponse struct {
	MemberID     uuid.UUID         `json:"member_id"`
	MemberNumber int               `json:"member_number"`
	MemberName   string            `json:"member_name"`
	Degree       membership.Degree `json:"degree"`
	Rate         RateResponse      `json:"rate"`
}

func toRateResponse(r attendance.Rate) RateResponse {
	return RateResponse{Attended: r.Attended, Total: r.Total, Percent: r.Percent}
}

// AttendanceHandler serves roll calls and attendance rates
type AttendanceHandler struct {
	BaseHandler
	attendance AttendanceService
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(attendance AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// TakeRollCall handles POST /attendance/roll-calls
func (h *AttendanceHandler) TakeRollCall(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}
	var req RollCallRequest
	if !h.bindJSON(c, &req) {
		return
	}
	date, err := parseDate(req.MeetingDate)
	if err != nil {
		h.BadRequest(c, "Invalid meeting date")
		return
	}

	input := appattendance.RollCallInput{
		MeetingDate: date,
		Degree:      req.Degree,
		Marks:       make(map[uuid.UUID]attendance.Status, len(req.Marks)),
		Notes:       make(map[uuid.UUID]string),
	}
	for _, m := range req.Marks {
		if _, dup := input.Marks[m.MemberID]; dup {
			h.BadRequest(c, "Member marked twice: "+m.MemberID.String())
			return
		}
		input.Marks[m.MemberID] = m.Status
		if m.Note != "" {
			input.Notes[m.MemberID] = m.Note
		}
	}

	result, err := h.attendance.TakeRollCall(c.Request.Context(), viewer, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, RollCallResponse{
		MeetingDate: result.MeetingDate,
		Degree:      result.Degree,
		Recorded:    result.Recorded,
		Attended:    result.Attended,
	})
}

// MemberRate handles GET /attendance/members/:id/rate
func (h *AttendanceHandler) MemberRate(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}
	memberID, ok := h.memberIDParam(c)
	if !ok {
		return
	}

	result, err := h.attendance.MemberRate(c.Request.Context(), viewer, memberID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	history := make([]AttendanceLineResponse, 0, len(result.History))
	for _, l := range result.History {
		history = append(history, AttendanceLineResponse{
			MeetingDate: l.MeetingDate,
			Degree:      l.Degree,
			Status:      l.Status,
			Note:        l.Note,
		})
	}
	h.Success(c, MemberRateResponse{
		MemberID: result.MemberID,
		Personal: toRateResponse(result.Personal),
		Official: toRateResponse(result.Official),
		History:  history,
	})
}

// Report handles GET /attendance/report
func (h *AttendanceHandler) Report(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}

	lines, err := h.attendance.Report(c.Request.Context(), viewer)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]AttendanceReportLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, AttendanceReportLineResponse{
			MemberID:     l.MemberID,
			MemberNumber: l.MemberNumber,
			MemberName:   l.MemberName,
			Degree:       l.Degree,
			Rate:         toRateResponse(l.Rate),
		})
	}
	h.Success(c, out)
}
