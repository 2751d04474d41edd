package service

import (
	"testing"
	"time"

	"github.com/bimakw/pmo/internal/apperr"
	"github.com/stretchr/testify/require"
)

func TestMilestoneDeleteDetachesTasks(t *testing.T) {
	f := newFixture(t)
	svc := NewMilestoneService(f.st)
	tasks := NewTaskService(f.st, true)

	milestone, err := svc.Create(f.owner.ID, f.project.ID, "Beta", "", nil)
	require.NoError(t, err)

	task, err := tasks.Create(f.owner.ID, CreateTaskInput{
		ProjectID:   f.project.ID,
		Title:       "Milestone work",
		MilestoneID: &milestone.ID,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(f.owner.ID, milestone.ID))

	task, err = tasks.GetByID(task.ID)
	require.NoError(t, err, "task survives its milestone")
	require.Nil(t, task.MilestoneID)

	_, err = svc.GetByID(milestone.ID)
	require.True(t, apperr.IsNotFound(err))
}

func TestMilestoneListOrderedByDueDate(t *testing.T) {
	f := newFixture(t)
	svc := NewMilestoneService(f.st)

	late := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	early := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Create(f.owner.ID, f.project.ID, "No date", "", nil)
	require.NoError(t, err)
	_, err = svc.Create(f.owner.ID, f.project.ID, "Late", "", &late)
	require.NoError(t, err)
	_, err = svc.Create(f.owner.ID, f.project.ID, "Early", "", &early)
	require.NoError(t, err)

	milestones, err := svc.ListByProject(f.project.ID)
	require.NoError(t, err)
	require.Len(t, milestones, 3)
	require.Equal(t, "Early", milestones[0].Name)
	require.Equal(t, "Late", milestones[1].Name)
	require.Equal(t, "No date", milestones[2].Name, "undated milestones sort last")
}

func TestMilestoneCreateUnknownProject(t *testing.T) {
	f := newFixture(t)
	svc := NewMilestoneService(f.st)

	_, err := svc.Create(f.owner.ID, 9999, "X", "", nil)
	require.True(t, apperr.IsNotFound(err), "got %v", err)
}
