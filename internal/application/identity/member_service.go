package identity

import (
	"context"
	"fmt"

	"github.com/logia/portal/internal/domain/membership"
	"github.com/logia/portal/internal/domain/shared"
	"go.uber.org/zap"
)

// MemberService registers members and serves their dossiers
type MemberService struct {
	members membership.MemberRepository
	logger  *zap.Logger
}

// NewMemberService creates a new member service
func NewMemberService(members membership.MemberRepository, logger *zap.Logger) *MemberService {
	return &MemberService{members: members, logger: logger}
}

// RegisterMember creates a member with the next free member number. The member
// must choose a new password on first login.
func (s *MemberService) RegisterMember(ctx context.Context, viewer membership.Viewer, input RegisterMemberInput) (*DossierView, error) {
	if err := viewer.Require(membership.PermMemberRegister); err != nil {
		return nil, err
	}

	if _, err := s.members.FindByUsername(ctx, input.Username); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Username is already taken")
	}

	number, err := s.members.NextNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("next member number: %w", err)
	}
	member, err := membership.NewMember(number, input.FullName, input.Username, input.Password, input.Degree)
	if err != nil {
		return nil, err
	}
	if input.Role != "" {
		if err := member.AssignRole(input.Role); err != nil {
			return nil, err
		}
	}
	member.Dossier = input.Dossier

	if err := s.members.Save(ctx, member); err != nil {
		return nil, err
	}

	s.logger.Info("Member registered",
		zap.Int("number", member.Number),
		zap.String("member_id", member.ID.String()),
		zap.String("registered_by", viewer.MemberID.String()))

	view := toDossierView(member)
	return &view, nil
}

// ListDossiers returns the dossiers the viewer's office may read
func (s *MemberService) ListDossiers(ctx context.Context, viewer membership.Viewer) ([]DossierView, error) {
	if err := viewer.Require(membership.PermDossierView); err != nil {
		return nil, err
	}
	members, err := s.members.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	visible := viewer.FilterDossiers(members)
	out := make([]DossierView, 0, len(visible))
	for i := range visible {
		out = append(out, toDossierView(&visible[i]))
	}
	return out, nil
}
