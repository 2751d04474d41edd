package service

import (
	"testing"

	"github.com/bimakw/pmo/internal/apperr"
	"github.com/bimakw/pmo/internal/model"
	"github.com/stretchr/testify/require"
)

func TestProjectCreateOwnerIsMember(t *testing.T) {
	f := newFixture(t)
	svc := NewProjectService(f.st)
	dev := f.addUser(t, "dev@example.com")

	project, err := svc.Create(f.owner.ID, CreateProjectInput{
		Name:      "Gemini",
		OwnerID:   f.owner.ID,
		MemberIDs: []uint{dev.ID, f.owner.ID},
	})
	require.NoError(t, err)
	require.Equal(t, model.ProjectPlanning, project.Status)
	require.Len(t, project.Members, 2)
	require.True(t, svc.IsMember(project.ID, f.owner.ID))
	require.True(t, svc.IsMember(project.ID, dev.ID))
}

func TestProjectUpdateRejectsOwnerChange(t *testing.T) {
	f := newFixture(t)
	svc := NewProjectService(f.st)

	_, err := svc.Update(f.owner.ID, f.project.ID, map[string]interface{}{"owner_id": uint(42)})
	require.True(t, apperr.IsValidation(err), "got %v", err)
}

func TestTransferOwnerKeepsOldOwnerAsMember(t *testing.T) {
	f := newFixture(t)
	svc := NewProjectService(f.st)
	dev := f.addUser(t, "dev@example.com")

	project, err := svc.TransferOwner(f.owner.ID, f.project.ID, dev.ID)
	require.NoError(t, err)
	require.Equal(t, dev.ID, project.OwnerID)
	require.True(t, svc.IsMember(f.project.ID, f.owner.ID))
	require.True(t, svc.IsMember(f.project.ID, dev.ID))

	// Transferring to the current owner is a no-op and rejected.
	_, err = svc.TransferOwner(f.owner.ID, f.project.ID, dev.ID)
	require.True(t, apperr.IsValidation(err))
}

func TestProjectDeleteRemovesScopedActivity(t *testing.T) {
	f := newFixture(t)
	svc := NewProjectService(f.st)
	tasks := NewTaskService(f.st, true)

	// Generate project-scoped history first.
	_, err := tasks.Transition(f.owner.ID, f.task.ID, model.TaskInProgress)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(f.owner.ID, f.project.ID))

	var scoped int64
	f.st.DB().Model(&model.ActivityEvent{}).Where("project_id = ?", f.project.ID).Count(&scoped)
	require.Zero(t, scoped)

	// The deletion itself is audited without a project scope.
	deleted := f.events(t, "project", model.ActionDeleted)
	require.Len(t, deleted, 1)
	require.Nil(t, deleted[0].ProjectID)

	_, err = svc.GetByID(f.project.ID)
	require.True(t, apperr.IsNotFound(err))
}

func TestAddMembersSkipsExisting(t *testing.T) {
	f := newFixture(t)
	svc := NewProjectService(f.st)
	dev := f.addUser(t, "dev@example.com")

	added, skipped, err := svc.AddMembers(f.owner.ID, f.project.ID, []uint{dev.ID, f.owner.ID}, "member")
	require.NoError(t, err)
	require.Len(t, added, 1)
	require.Equal(t, []uint{f.owner.ID}, skipped)

	// All candidates already members: validation error.
	_, _, err = svc.AddMembers(f.owner.ID, f.project.ID, []uint{dev.ID}, "member")
	require.True(t, apperr.IsValidation(err), "got %v", err)
}

func TestRemoveOwnerIsBlocked(t *testing.T) {
	f := newFixture(t)
	svc := NewProjectService(f.st)

	err := svc.RemoveMember(f.owner.ID, f.project.ID, f.owner.ID)
	require.True(t, apperr.IsConflict(err), "got %v", err)
}

func TestProjectListVisibility(t *testing.T) {
	f := newFixture(t)
	svc := NewProjectService(f.st)
	outsider := f.addUser(t, "outsider@example.com")

	visible, total, err := svc.List(outsider.ID, false, "", "", nil, 1, 20)
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, visible)

	visible, total, err = svc.List(outsider.ID, true, "", "", nil, 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, visible, 1)
}

func TestProjectStats(t *testing.T) {
	f := newFixture(t)
	svc := NewProjectService(f.st)
	tasks := NewTaskService(f.st, true)

	_, err := tasks.Create(f.owner.ID, CreateTaskInput{ProjectID: f.project.ID, Title: "Second", Status: model.TaskDone})
	require.NoError(t, err)

	stats := svc.Stats(f.project.ID)
	require.EqualValues(t, 2, stats["total_tasks"])
	require.EqualValues(t, 1, stats[model.TaskTodo])
	require.EqualValues(t, 1, stats[model.TaskDone])
	require.EqualValues(t, 1, stats["member_count"])
}
