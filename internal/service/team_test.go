package service

import (
	"testing"

	"github.com/bimakw/pmo/internal/apperr"
	"github.com/bimakw/pmo/internal/model"
	"github.com/stretchr/testify/require"
)

func TestTeamCreateWithLead(t *testing.T) {
	f := newFixture(t)
	svc := NewTeamService(f.st)

	team, err := svc.Create(f.owner.ID, "Platform", "", &f.owner.ID)
	require.NoError(t, err)
	require.Equal(t, f.owner.ID, *team.LeadID)
	require.Len(t, team.Members, 1)
	require.Equal(t, model.TeamRoleLead, team.Members[0].Role)
}

func TestSetLeadDemotesOldLead(t *testing.T) {
	f := newFixture(t)
	svc := NewTeamService(f.st)
	dev := f.addUser(t, "dev@example.com")

	team, err := svc.Create(f.owner.ID, "Platform", "", &f.owner.ID)
	require.NoError(t, err)

	team, err = svc.SetLead(f.owner.ID, team.ID, &dev.ID)
	require.NoError(t, err)
	require.Equal(t, dev.ID, *team.LeadID)

	roles := map[uint]string{}
	for _, m := range team.Members {
		roles[m.UserID] = m.Role
	}
	require.Equal(t, model.TeamRoleMember, roles[f.owner.ID])
	require.Equal(t, model.TeamRoleLead, roles[dev.ID])

	// Clearing the lead keeps the membership.
	team, err = svc.SetLead(f.owner.ID, team.ID, nil)
	require.NoError(t, err)
	require.Nil(t, team.LeadID)
	require.Len(t, team.Members, 2)
}

func TestRemoveLeadClearsReference(t *testing.T) {
	f := newFixture(t)
	svc := NewTeamService(f.st)

	team, err := svc.Create(f.owner.ID, "Platform", "", &f.owner.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveMember(f.owner.ID, team.ID, f.owner.ID))

	team, err = svc.GetByID(team.ID)
	require.NoError(t, err)
	require.Nil(t, team.LeadID)
	require.Empty(t, team.Members)
}

func TestTeamAddMemberRejectsDuplicate(t *testing.T) {
	f := newFixture(t)
	svc := NewTeamService(f.st)
	dev := f.addUser(t, "dev@example.com")

	team, err := svc.Create(f.owner.ID, "Platform", "", nil)
	require.NoError(t, err)

	require.NoError(t, svc.AddMember(f.owner.ID, team.ID, dev.ID, ""))
	err = svc.AddMember(f.owner.ID, team.ID, dev.ID, "")
	require.True(t, apperr.IsValidation(err), "got %v", err)

	err = svc.AddMember(f.owner.ID, team.ID, dev.ID, "boss")
	require.True(t, apperr.IsValidation(err))
}

func TestTeamDeleteCascadesMemberships(t *testing.T) {
	f := newFixture(t)
	svc := NewTeamService(f.st)

	team, err := svc.Create(f.owner.ID, "Platform", "", &f.owner.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(f.owner.ID, team.ID))

	var n int64
	f.st.DB().Model(&model.TeamMember{}).Where("team_id = ?", team.ID).Count(&n)
	require.Zero(t, n)

	_, err = svc.GetByID(team.ID)
	require.True(t, apperr.IsNotFound(err))
}
