package notify

import (
	"testing"

	"github.com/bimakw/pmo/internal/model"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Project{},
		&model.ProjectMember{},
		&model.Task{},
		&model.Notification{},
	))
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

type sceneIDs struct {
	actor, assignee, watcher uint
	projectID, taskID        uint
}

func seedScene(t *testing.T, db *gorm.DB) sceneIDs {
	t.Helper()

	actor := &model.User{Email: "actor@example.com", Name: "Actor", PasswordHash: "x"}
	assignee := &model.User{Email: "assignee@example.com", Name: "Assignee", PasswordHash: "x"}
	watcher := &model.User{Email: "watcher@example.com", Name: "Watcher", PasswordHash: "x"}
	for _, u := range []*model.User{actor, assignee, watcher} {
		require.NoError(t, db.Create(u).Error)
	}

	project := &model.Project{Name: "P", OwnerID: actor.ID, Status: "active", Priority: "medium"}
	require.NoError(t, db.Create(project).Error)
	for _, u := range []*model.User{actor, assignee, watcher} {
		require.NoError(t, db.Create(&model.ProjectMember{ProjectID: project.ID, UserID: u.ID, Role: "member"}).Error)
	}

	task := &model.Task{ProjectID: project.ID, Title: "T", Status: "inprogress", Priority: "medium", AssigneeID: &assignee.ID}
	require.NoError(t, db.Create(task).Error)

	return sceneIDs{
		actor: actor.ID, assignee: assignee.ID, watcher: watcher.ID,
		projectID: project.ID, taskID: task.ID,
	}
}

func TestDeriveAssignedNotifiesTarget(t *testing.T) {
	db := newTestDB(t)
	ids := seedScene(t, db)

	ev := model.ActivityEvent{
		ActorID:    &ids.actor,
		ProjectID:  &ids.projectID,
		Action:     model.ActionAssigned,
		EntityType: "task",
		EntityID:   ids.taskID,
		Detail:     model.JSONMap{"from": nil, "to": float64(ids.assignee)},
	}

	out := DefaultPolicy{}.Derive(db, ev)
	require.Len(t, out, 1)
	require.Equal(t, ids.assignee, out[0].UserID)
	require.Equal(t, model.NotifyTaskAssigned, out[0].Type)
}

func TestDeriveAssignedSkipsSelfAssignment(t *testing.T) {
	db := newTestDB(t)
	ids := seedScene(t, db)

	ev := model.ActivityEvent{
		ActorID:  &ids.assignee,
		Action:   model.ActionAssigned,
		EntityID: ids.taskID,
		Detail:   model.JSONMap{"to": float64(ids.assignee)},
	}
	require.Empty(t, DefaultPolicy{}.Derive(db, ev))
}

func TestDeriveDoneNotifiesMembersExceptActor(t *testing.T) {
	db := newTestDB(t)
	ids := seedScene(t, db)

	ev := model.ActivityEvent{
		ActorID:  &ids.actor,
		Action:   model.ActionStatusChanged,
		EntityID: ids.taskID,
		Detail:   model.JSONMap{"from": "inprogress", "to": "done"},
	}

	out := DefaultPolicy{}.Derive(db, ev)
	require.Len(t, out, 2)

	targets := map[uint]bool{}
	for _, n := range out {
		require.Equal(t, model.NotifyTaskCompleted, n.Type)
		targets[n.UserID] = true
	}
	require.True(t, targets[ids.assignee])
	require.True(t, targets[ids.watcher])
	require.False(t, targets[ids.actor])
}

func TestDeriveStatusChangeNotifiesAssignee(t *testing.T) {
	db := newTestDB(t)
	ids := seedScene(t, db)

	ev := model.ActivityEvent{
		ActorID:  &ids.actor,
		Action:   model.ActionStatusChanged,
		EntityID: ids.taskID,
		Detail:   model.JSONMap{"from": "inprogress", "to": "blocked"},
	}

	out := DefaultPolicy{}.Derive(db, ev)
	require.Len(t, out, 1)
	require.Equal(t, ids.assignee, out[0].UserID)
	require.Equal(t, model.NotifyTaskUpdated, out[0].Type)
}

func TestDeriveCommentNotifiesAssignee(t *testing.T) {
	db := newTestDB(t)
	ids := seedScene(t, db)

	ev := model.ActivityEvent{
		ActorID:  &ids.actor,
		Action:   model.ActionCommented,
		EntityID: ids.taskID,
		Detail:   model.JSONMap{"comment_id": float64(1)},
	}

	out := DefaultPolicy{}.Derive(db, ev)
	require.Len(t, out, 1)
	require.Equal(t, model.NotifyCommentAdded, out[0].Type)

	// The assignee commenting on their own task stays quiet.
	ev.ActorID = &ids.assignee
	require.Empty(t, DefaultPolicy{}.Derive(db, ev))
}

func TestTriggerWritesNotifications(t *testing.T) {
	db := newTestDB(t)
	ids := seedScene(t, db)

	trigger := NewTrigger(db, nil)
	trigger.Start()

	trigger.Enqueue(model.ActivityEvent{
		ActorID:  &ids.actor,
		Action:   model.ActionAssigned,
		EntityID: ids.taskID,
		Detail:   model.JSONMap{"to": float64(ids.assignee)},
	})
	trigger.Stop()

	var rows []model.Notification
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, ids.assignee, rows[0].UserID)
}
