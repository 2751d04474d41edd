package service

import (
	"testing"
	"time"

	"github.com/bimakw/pmo/internal/apperr"
	"github.com/stretchr/testify/require"
)

var entryDay = time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

func TestRecordRejectsOutOfBoundsHours(t *testing.T) {
	f := newFixture(t)
	svc := NewTimeLedgerService(f.st)

	for _, hours := range []float64{0, 0.1, 24.25, 100, -1, 1.3, 2.26} {
		_, err := svc.Record(f.owner.ID, f.task.ID, f.owner.ID, hours, entryDay, "")
		require.True(t, apperr.IsValidation(err), "hours=%v got %v", hours, err)
	}
}

func TestRecordAcceptsQuarterHours(t *testing.T) {
	f := newFixture(t)
	svc := NewTimeLedgerService(f.st)

	for _, hours := range []float64{0.25, 0.5, 1, 7.75, 24} {
		_, err := svc.Record(f.owner.ID, f.task.ID, f.owner.ID, hours, entryDay, "")
		require.NoError(t, err, "hours=%v", hours)
	}
}

func TestTotalsAreExact(t *testing.T) {
	f := newFixture(t)
	svc := NewTimeLedgerService(f.st)

	_, err := svc.Record(f.owner.ID, f.task.ID, f.owner.ID, 2.5, entryDay, "")
	require.NoError(t, err)
	_, err = svc.Record(f.owner.ID, f.task.ID, f.owner.ID, 1.25, entryDay, "")
	require.NoError(t, err)

	total, err := svc.TaskTotal(f.task.ID)
	require.NoError(t, err)
	require.Equal(t, 3.75, total)

	total, err = svc.ProjectTotal(f.project.ID)
	require.NoError(t, err)
	require.Equal(t, 3.75, total)

	total, err = svc.UserTotal(f.owner.ID, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 3.75, total)
}

func TestUserTotalDateRange(t *testing.T) {
	f := newFixture(t)
	svc := NewTimeLedgerService(f.st)

	earlier := entryDay.AddDate(0, 0, -7)
	_, err := svc.Record(f.owner.ID, f.task.ID, f.owner.ID, 1, earlier, "")
	require.NoError(t, err)
	_, err = svc.Record(f.owner.ID, f.task.ID, f.owner.ID, 2, entryDay, "")
	require.NoError(t, err)

	from := entryDay.AddDate(0, 0, -1)
	total, err := svc.UserTotal(f.owner.ID, &from, nil)
	require.NoError(t, err)
	require.Equal(t, 2.0, total)

	to := entryDay.AddDate(0, 0, -1)
	total, err = svc.UserTotal(f.owner.ID, nil, &to)
	require.NoError(t, err)
	require.Equal(t, 1.0, total)
}

func TestDeleteEntryAdjustsTotal(t *testing.T) {
	f := newFixture(t)
	svc := NewTimeLedgerService(f.st)

	entry, err := svc.Record(f.owner.ID, f.task.ID, f.owner.ID, 2.5, entryDay, "")
	require.NoError(t, err)
	_, err = svc.Record(f.owner.ID, f.task.ID, f.owner.ID, 1.25, entryDay, "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(f.owner.ID, entry.ID))

	total, err := svc.TaskTotal(f.task.ID)
	require.NoError(t, err)
	require.Equal(t, 1.25, total)

	err = svc.Delete(f.owner.ID, entry.ID)
	require.True(t, apperr.IsNotFound(err))
}

func TestRecordUnknownTaskOrUser(t *testing.T) {
	f := newFixture(t)
	svc := NewTimeLedgerService(f.st)

	_, err := svc.Record(f.owner.ID, 9999, f.owner.ID, 1, entryDay, "")
	require.True(t, apperr.IsNotFound(err))

	_, err = svc.Record(f.owner.ID, f.task.ID, 9999, 1, entryDay, "")
	require.True(t, apperr.IsNotFound(err))
}
