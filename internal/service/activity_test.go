package service

import (
	"testing"

	"github.com/bimakw/pmo/internal/apperr"
	"github.com/bimakw/pmo/internal/model"
	"github.com/stretchr/testify/require"
)

func seedEvents(t *testing.T, f *fixture, n int) {
	t.Helper()
	tasks := NewTaskService(f.st, true)
	statuses := []string{model.TaskInProgress, model.TaskReview, model.TaskDone, model.TaskTodo}
	for i := 0; i < n; i++ {
		_, err := tasks.Transition(f.owner.ID, f.task.ID, statuses[i%len(statuses)])
		require.NoError(t, err)
	}
}

func TestActivityListNewestFirst(t *testing.T) {
	f := newFixture(t)
	svc := NewActivityService(f.st)
	seedEvents(t, f, 5)

	events, err := svc.List(&f.project.ID, 10, nil)
	require.NoError(t, err)
	require.Len(t, events, 5)
	for i := 1; i < len(events); i++ {
		require.Greater(t, events[i-1].ID, events[i].ID, "feed must be newest first")
	}
}

func TestActivityCursorPaginationIsStable(t *testing.T) {
	f := newFixture(t)
	svc := NewActivityService(f.st)
	seedEvents(t, f, 7)

	first, err := svc.List(&f.project.ID, 3, nil)
	require.NoError(t, err)
	require.Len(t, first, 3)

	cursor := first[len(first)-1].ID
	second, err := svc.List(&f.project.ID, 3, &cursor)
	require.NoError(t, err)
	require.Len(t, second, 3)

	// Pages must not overlap and must continue the order.
	seen := map[uint]bool{}
	for _, ev := range first {
		seen[ev.ID] = true
	}
	for _, ev := range second {
		require.False(t, seen[ev.ID], "event %d appeared on both pages", ev.ID)
		require.Less(t, ev.ID, cursor)
	}

	cursor = second[len(second)-1].ID
	third, err := svc.List(&f.project.ID, 3, &cursor)
	require.NoError(t, err)
	require.Len(t, third, 1)
}

func TestActivityCursorUnknown(t *testing.T) {
	f := newFixture(t)
	svc := NewActivityService(f.st)

	missing := uint(9999)
	_, err := svc.List(&f.project.ID, 10, &missing)
	require.True(t, apperr.IsNotFound(err), "got %v", err)
}

func TestActivityLimitClamped(t *testing.T) {
	f := newFixture(t)
	svc := NewActivityService(f.st)
	seedEvents(t, f, 3)

	events, err := svc.List(&f.project.ID, 0, nil)
	require.NoError(t, err)
	require.Len(t, events, 3, "zero limit falls back to the default")

	events, err = svc.List(&f.project.ID, 100000, nil)
	require.NoError(t, err)
	require.Len(t, events, 3)
}

func TestActivityListByEntity(t *testing.T) {
	f := newFixture(t)
	svc := NewActivityService(f.st)
	tasks := NewTaskService(f.st, true)

	other, err := tasks.Create(f.owner.ID, CreateTaskInput{ProjectID: f.project.ID, Title: "Other"})
	require.NoError(t, err)
	_, err = tasks.Transition(f.owner.ID, f.task.ID, model.TaskInProgress)
	require.NoError(t, err)

	events, err := svc.ListByEntity("task", f.task.ID, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, f.task.ID, events[0].EntityID)

	events, err = svc.ListByEntity("task", other.ID, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, model.ActionCreated, events[0].Action)
}
