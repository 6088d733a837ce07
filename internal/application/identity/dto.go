package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/logia/portal/internal/domain/membership"
)

// LoginInput contains the credentials typed on the login form
type LoginInput struct {
	Username string
	Password string
}

// LoginResult is an opened session
type LoginResult struct {
	AccessToken       string
	ExpiresAt         time.Time
	TokenType         string
	MustResetPassword bool
	Member            MemberInfo
}

// MemberInfo is the logged-in member as the dashboard shows it
type MemberInfo struct {
	ID          uuid.UUID
	Number      int
	FullName    string
	Username    string
	Role        membership.Role
	Degree      membership.Degree
	Permissions []string
	Menu        []membership.MenuSection
}

// ChangePasswordInput replaces the viewer's password
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// RegisterMemberInput creates a member. Role defaults to MEMBER.
type RegisterMemberInput struct {
	FullName string
	Username string
	Password string
	Degree   membership.Degree
	Role     membership.Role
	Dossier  membership.Dossier
}

// DossierView is a member's personal record
type DossierView struct {
	ID       uuid.UUID
	Number   int
	FullName string
	Username string
	Role     membership.Role
	Degree   membership.Degree
	Status   membership.Status
	Dossier  membership.Dossier
}

func toMemberInfo(m *membership.Member) MemberInfo {
	return MemberInfo{
		ID:          m.ID,
		Number:      m.Number,
		FullName:    m.FullName,
		Username:    m.Username,
		Role:        m.Role,
		Degree:      m.Degree,
		Permissions: m.Role.Permissions(),
		Menu:        m.Role.Menu(),
	}
}

func toDossierView(m *membership.Member) DossierView {
	return DossierView{
		ID:       m.ID,
		Number:   m.Number,
		FullName: m.FullName,
		Username: m.Username,
		Role:     m.Role,
		Degree:   m.Degree,
		Status:   m.Status,
		Dossier:  m.Dossier,
	}
}
