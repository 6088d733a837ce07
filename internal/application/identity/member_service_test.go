package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/logia/portal/internal/domain/membership"
	"github.com/logia/portal/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemberService_RegisterMember(t *testing.T) {
	ctx := context.Background()
	secretary := membership.Viewer{MemberID: uuid.New(), Role: membership.RoleSecretary}

	t.Run("assigns the next number", func(t *testing.T) {
		repo := new(MockMemberRepository)
		repo.On("FindByUsername", ctx, "lgomez").Return(nil, shared.ErrNotFound)
		repo.On("NextNumber", ctx).Return(42, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*membership.Member")).Return(nil)
		svc := NewMemberService(repo, zap.NewNop())

		view, err := svc.RegisterMember(ctx, secretary, RegisterMemberInput{
			FullName: "Luis Gomez",
			Username: "lgomez",
			Password: "temporal1",
			Degree:   membership.DegreeApprentice,
			Dossier:  membership.Dossier{Profession: "Ingeniero", BloodType: "O+"},
		})
		require.NoError(t, err)
		assert.Equal(t, 42, view.Number)
		assert.Equal(t, membership.RoleMember, view.Role)
		assert.Equal(t, "Ingeniero", view.Dossier.Profession)

		saved := repo.Calls[2].Arguments.Get(1).(*membership.Member)
		assert.True(t, saved.MustResetPassword)
		assert.True(t, saved.VerifyPassword("temporal1"))
	})

	t.Run("username taken", func(t *testing.T) {
		repo := new(MockMemberRepository)
		repo.On("FindByUsername", ctx, "lgomez").Return(&membership.Member{}, nil)
		svc := NewMemberService(repo, zap.NewNop())

		_, err := svc.RegisterMember(ctx, secretary, RegisterMemberInput{FullName: "Luis", Username: "lgomez", Password: "temporal1", Degree: 1})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		repo.AssertNotCalled(t, "NextNumber", mock.Anything)
	})

	t.Run("only the secretary registers", func(t *testing.T) {
		svc := NewMemberService(new(MockMemberRepository), zap.NewNop())
		_, err := svc.RegisterMember(ctx, membership.Viewer{Role: membership.RoleTreasurer}, RegisterMemberInput{})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestMemberService_ListDossiers(t *testing.T) {
	ctx := context.Background()
	all := []membership.Member{
		{BaseEntity: shared.BaseEntity{ID: uuid.New()}, FullName: "Aprendiz", Degree: membership.DegreeApprentice},
		{BaseEntity: shared.BaseEntity{ID: uuid.New()}, FullName: "Companero", Degree: membership.DegreeFellowCraft},
		{BaseEntity: shared.BaseEntity{ID: uuid.New()}, FullName: "Maestro", Degree: membership.DegreeMaster},
	}

	tests := []struct {
		name  string
		role  membership.Role
		names []string
	}{
		{"senior warden sees fellow crafts", membership.RoleSeniorWarden, []string{"Companero"}},
		{"junior warden sees apprentices", membership.RoleJuniorWarden, []string{"Aprendiz"}},
		{"hospitaller sees everyone", membership.RoleHospitaller, []string{"Aprendiz", "Companero", "Maestro"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockMemberRepository)
			repo.On("FindAll", ctx).Return(all, nil)
			svc := NewMemberService(repo, zap.NewNop())

			views, err := svc.ListDossiers(ctx, membership.Viewer{Role: tt.role})
			require.NoError(t, err)
			names := make([]string, 0, len(views))
			for _, v := range views {
				names = append(names, v.FullName)
			}
			assert.Equal(t, tt.names, names)
		})
	}

	t.Run("treasurer has no dossier access", func(t *testing.T) {
		svc := NewMemberService(new(MockMemberRepository), zap.NewNop())
		_, err := svc.ListDossiers(ctx, membership.Viewer{Role: membership.RoleTreasurer})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}
