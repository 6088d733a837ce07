package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/logia/portal/internal/application/identity"
	"github.com/logia/portal/internal/domain/membership"
)

// MemberService is the registry side of the identity application layer
type MemberService interface {
	RegisterMember(ctx context.Context, viewer membership.Viewer, input identity.RegisterMemberInput) (*identity.DossierView, error)
	ListDossiers(ctx context.Context, viewer membership.Viewer) ([]identity.DossierView, error)
}

// DossierRequest holds the personal record fields of a new member
type DossierRequest struct {
	Phone            string `json:"phone" binding:"max=30"`
	Email            string `json:"email" binding:"omitempty,email"`
	Profession       string `json:"profession" binding:"max=100"`
	BloodType        string `json:"blood_type" binding:"max=5"`
	EmergencyContact string `json:"emergency_contact" binding:"max=200"`
	InitiationDate   string `json:"initiation_date" binding:"omitempty,datetime=2006-01-02"`
	Offices          string `json:"offices" binding:"max=500"`
}

// RegisterMemberRequest creates a member
type RegisterMemberRequest struct {
	FullName string            `json:"full_name" binding:"required,max=150"`
	Username string            `json:"username" binding:"required,min=3,max=50"`
	Password string            `json:"password" binding:"required,min=6,max=72"`
	Degree   membership.Degree `json:"degree" binding:"required,min=1,max=3"`
	Role     membership.Role   `json:"role"`
	Dossier  DossierRequest    `json:"dossier"`
}

// DossierResponse is a member's personal record
type DossierResponse struct {
	ID               uuid.UUID         `json:"id"`
	Number           int               `json:"number"`
	FullName         string            `json:"full_name"`
	Username         string            `json:"username"`
	Role             membership.Role   `json:"role"`
	Degree           membership.Degree `json:"degree"`
	Status           membership.Status `json:"status"`
	Phone            string            `json:"phone,omitempty"`
	Email            string            `json:"email,omitempty"`
	Profession       string            `json:"profession,omitempty"`
	BloodType        string            `json:"blood_type,omitempty"`
	EmergencyContact string            `json:"emergency_contact,omitempty"`
	InitiationDate   *time.Time        `json:"initiation_date,omitempty"`
	Offices          string            `json:"offices,omitempty"`
}

func toDossierResponse(v identity.DossierView) DossierResponse {
	return DossierResponse{
		ID:               v.ID,
		Number:           v.Number,
		FullName:         v.FullName,
		Username:         v.Username,
		Role:             v.Role,
		Degree:           v.Degree,
		Status:           v.Status,
		Phone:            v.Dossier.Phone,
		Email:            v.Dossier.Email,
		Profession:       v.Dossier.Profession,
		BloodType:        v.Dossier.BloodType,
		EmergencyContact: v.Dossier.EmergencyContact,
		InitiationDate:   v.Dossier.InitiationDate,
		Offices:          v.Dossier.Offices,
	}
}

// MemberHandler serves member registration and dossiers
type MemberHandler struct {
	BaseHandler
	members MemberService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(members MemberService) *MemberHandler {
	return &MemberHandler{members: members}
}

// Register handles POST /members
func (h *MemberHandler) Register(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}
	var req RegisterMemberRequest
	if !h.bindJSON(c, &req) {
		return
	}
	dossier := membership.Dossier{
		Phone:            req.Dossier.Phone,
		Email:            req.Dossier.Email,
		Profession:       req.Dossier.Profession,
		BloodType:        req.Dossier.BloodType,
		EmergencyContact: req.Dossier.EmergencyContact,
		Offices:          req.Dossier.Offices,
	}
	if req.Dossier.InitiationDate != "" {
		d, err := parseDate(req.Dossier.InitiationDate)
		if err != nil {
			h.BadRequest(c, "Invalid initiation date")
			return
		}
		dossier.InitiationDate = &d
	}

	view, err := h.members.RegisterMember(c.Request.Context(), viewer, identity.RegisterMemberInput{
		FullName: req.FullName,
		Username: req.Username,
		Password: req.Password,
		Degree:   req.Degree,
		Role:     req.Role,
		Dossier:  dossier,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toDossierResponse(*view))
}

// ListDossiers handles GET /members/dossiers
func (h *MemberHandler) ListDossiers(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}

	views, err := h.members.ListDossiers(c.Request.Context(), viewer)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]DossierResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toDossierResponse(v))
	}
	h.Success(c, out)
}
