package membership

import (
	"github.com/google/uuid"
	"github.com/logia/portal/internal/domain/shared"
)

// Viewer identifies who is asking. It is passed explicitly into every
// service call instead of being read from session globals.
type Viewer struct {
	MemberID uuid.UUID
	Role     Role
	Degree   Degree
}

// Require fails with ErrForbidden unless the viewer's role grants permission
func (v Viewer) Require(permission string) error {
	if !v.Role.Can(permission) {
		return shared.ErrForbidden
	}
	return nil
}

// CanViewStatement reports whether the viewer may see a member's account
func (v Viewer) CanViewStatement(memberID uuid.UUID) bool {
	if v.Role.Can(PermStatementAny) {
		return true
	}
	return v.MemberID == memberID && v.Role.Can(PermStatementOwn)
}

// DossierDegrees returns the degrees whose dossiers the viewer may read.
// Nil means every degree.
func (v Viewer) DossierDegrees() ([]Degree, bool) {
	switch v.Role {
	case RoleSeniorWarden:
		return []Degree{DegreeFellowCraft}, true
	case RoleJuniorWarden:
		return []Degree{DegreeApprentice}, true
	case RoleSecretary, RoleHospitaller, RoleWorshipfulMaster:
		return nil, true
	default:
		return nil, false
	}
}

// FilterDossiers keeps the members whose dossier the viewer may read
func (v Viewer) FilterDossiers(members []Member) []Member {
	degrees, ok := v.DossierDegrees()
	if !ok {
		return []Member{}
	}
	if degrees == nil {
		return members
	}
	out := make([]Member, 0, len(members))
	for _, m := range members {
		for _, d := range degrees {
			if m.Degree == d {
				out = append(out, m)
				break
			}
		}
	}
	return out
}
