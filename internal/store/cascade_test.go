package store

import (
	"testing"

	"github.com/bimakw/pmo/internal/apperr"
	"github.com/bimakw/pmo/internal/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func count(t *testing.T, db *gorm.DB, m interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(m)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func TestCascadeProjectRemovesFullClosure(t *testing.T) {
	db := newTestDB(t)

	owner := &model.User{Email: "o@example.com", Name: "O", PasswordHash: "x"}
	mustCreate(t, db, owner)
	project := &model.Project{Name: "P", OwnerID: owner.ID, Status: "active", Priority: "medium"}
	mustCreate(t, db, project)
	other := &model.Project{Name: "Q", OwnerID: owner.ID, Status: "active", Priority: "medium"}
	mustCreate(t, db, other)

	milestone := &model.Milestone{ProjectID: project.ID, Name: "M1"}
	mustCreate(t, db, milestone)
	mustCreate(t, db, &model.ProjectMember{ProjectID: project.ID, UserID: owner.ID, Role: "owner"})

	task := &model.Task{ProjectID: project.ID, MilestoneID: &milestone.ID, Title: "T", Status: "todo", Priority: "medium"}
	mustCreate(t, db, task)
	mustCreate(t, db, &model.Comment{TaskID: task.ID, UserID: owner.ID, Content: "c"})
	mustCreate(t, db, &model.TimeEntry{TaskID: task.ID, UserID: owner.ID, Hours: 1})
	tag := &model.Tag{Name: "bug", Color: "#ff0000"}
	mustCreate(t, db, tag)
	mustCreate(t, db, &model.TaskTag{TaskID: task.ID, TagID: tag.ID})
	mustCreate(t, db, &model.Attachment{TaskID: task.ID, UploadedBy: owner.ID, Filename: "f", OriginalFilename: "f", StoragePath: "/tmp/f"})
	mustCreate(t, db, &model.ActivityEvent{ProjectID: &project.ID, Action: "created", EntityType: "task", EntityID: task.ID})

	// A task in another project must survive.
	survivor := &model.Task{ProjectID: other.ID, Title: "S", Status: "todo", Priority: "medium"}
	mustCreate(t, db, survivor)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return CascadeProject(tx, project.ID)
	}))

	require.Zero(t, count(t, db, &model.Project{}, "id = ?", project.ID))
	require.Zero(t, count(t, db, &model.Task{}, "project_id = ?", project.ID))
	require.Zero(t, count(t, db, &model.Milestone{}, "project_id = ?", project.ID))
	require.Zero(t, count(t, db, &model.ProjectMember{}, "project_id = ?", project.ID))
	require.Zero(t, count(t, db, &model.Comment{}, "task_id = ?", task.ID))
	require.Zero(t, count(t, db, &model.TimeEntry{}, "task_id = ?", task.ID))
	require.Zero(t, count(t, db, &model.TaskTag{}, "task_id = ?", task.ID))
	require.Zero(t, count(t, db, &model.Attachment{}, "task_id = ?", task.ID))
	require.Zero(t, count(t, db, &model.ActivityEvent{}, "project_id = ?", project.ID))

	// Everything outside the closure is untouched.
	require.EqualValues(t, 1, count(t, db, &model.Task{}, "id = ?", survivor.ID))
	require.EqualValues(t, 1, count(t, db, &model.Tag{}, ""))
	require.EqualValues(t, 1, count(t, db, &model.User{}, ""))
}

func TestCascadeUserRestrictedWhileOwningProjects(t *testing.T) {
	db := newTestDB(t)

	owner := &model.User{Email: "o@example.com", Name: "O", PasswordHash: "x"}
	mustCreate(t, db, owner)
	p1 := &model.Project{Name: "P1", OwnerID: owner.ID, Status: "active", Priority: "medium"}
	p2 := &model.Project{Name: "P2", OwnerID: owner.ID, Status: "active", Priority: "medium"}
	mustCreate(t, db, p1)
	mustCreate(t, db, p2)

	err := db.Transaction(func(tx *gorm.DB) error {
		return CascadeUser(tx, owner.ID)
	})
	require.True(t, apperr.IsConflict(err), "got %v", err)

	e, ok := apperr.As(err)
	require.True(t, ok)
	require.ElementsMatch(t, []uint{p1.ID, p2.ID}, e.Blocking)

	// Nothing was deleted.
	require.EqualValues(t, 1, count(t, db, &model.User{}, "id = ?", owner.ID))
	require.EqualValues(t, 2, count(t, db, &model.Project{}, ""))
}

func TestCascadeUserCascadesAndNullifies(t *testing.T) {
	db := newTestDB(t)

	owner := &model.User{Email: "o@example.com", Name: "O", PasswordHash: "x"}
	member := &model.User{Email: "m@example.com", Name: "M", PasswordHash: "x"}
	mustCreate(t, db, owner)
	mustCreate(t, db, member)

	project := &model.Project{Name: "P", OwnerID: owner.ID, Status: "active", Priority: "medium"}
	mustCreate(t, db, project)
	mustCreate(t, db, &model.ProjectMember{ProjectID: project.ID, UserID: member.ID, Role: "member"})

	team := &model.Team{Name: "T", LeadID: &member.ID}
	mustCreate(t, db, team)
	mustCreate(t, db, &model.TeamMember{TeamID: team.ID, UserID: member.ID, Role: "lead"})

	task := &model.Task{ProjectID: project.ID, Title: "T1", Status: "todo", Priority: "medium", AssigneeID: &member.ID}
	mustCreate(t, db, task)
	mustCreate(t, db, &model.Comment{TaskID: task.ID, UserID: member.ID, Content: "c"})
	mustCreate(t, db, &model.TimeEntry{TaskID: task.ID, UserID: member.ID, Hours: 2})
	mustCreate(t, db, &model.Notification{UserID: member.ID, Type: "system", Title: "t"})
	mustCreate(t, db, &model.ActivityEvent{ActorID: &member.ID, ProjectID: &project.ID, Action: "created", EntityType: "task", EntityID: task.ID})

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return CascadeUser(tx, member.ID)
	}))

	require.Zero(t, count(t, db, &model.User{}, "id = ?", member.ID))
	require.Zero(t, count(t, db, &model.ProjectMember{}, "user_id = ?", member.ID))
	require.Zero(t, count(t, db, &model.TeamMember{}, "user_id = ?", member.ID))
	require.Zero(t, count(t, db, &model.Comment{}, "user_id = ?", member.ID))
	require.Zero(t, count(t, db, &model.TimeEntry{}, "user_id = ?", member.ID))
	require.Zero(t, count(t, db, &model.Notification{}, "user_id = ?", member.ID))

	// Weak references are nulled, the referencing rows survive.
	var gotTeam model.Team
	require.NoError(t, db.First(&gotTeam, team.ID).Error)
	require.Nil(t, gotTeam.LeadID)

	var gotTask model.Task
	require.NoError(t, db.First(&gotTask, task.ID).Error)
	require.Nil(t, gotTask.AssigneeID)

	var ev model.ActivityEvent
	require.NoError(t, db.Where("entity_type = ?", "task").First(&ev).Error)
	require.Nil(t, ev.ActorID, "audit row survives with actor nulled")
}

func TestCascadeMilestoneNullifiesTasks(t *testing.T) {
	db := newTestDB(t)

	owner := &model.User{Email: "o@example.com", Name: "O", PasswordHash: "x"}
	mustCreate(t, db, owner)
	project := &model.Project{Name: "P", OwnerID: owner.ID, Status: "active", Priority: "medium"}
	mustCreate(t, db, project)
	milestone := &model.Milestone{ProjectID: project.ID, Name: "M"}
	mustCreate(t, db, milestone)
	task := &model.Task{ProjectID: project.ID, MilestoneID: &milestone.ID, Title: "T", Status: "todo", Priority: "medium"}
	mustCreate(t, db, task)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return CascadeMilestone(tx, milestone.ID)
	}))

	require.Zero(t, count(t, db, &model.Milestone{}, "id = ?", milestone.ID))

	var gotTask model.Task
	require.NoError(t, db.First(&gotTask, task.ID).Error)
	require.Nil(t, gotTask.MilestoneID)
}

func TestCascadeTagRemovesLinks(t *testing.T) {
	db := newTestDB(t)

	owner := &model.User{Email: "o@example.com", Name: "O", PasswordHash: "x"}
	mustCreate(t, db, owner)
	project := &model.Project{Name: "P", OwnerID: owner.ID, Status: "active", Priority: "medium"}
	mustCreate(t, db, project)
	task := &model.Task{ProjectID: project.ID, Title: "T", Status: "todo", Priority: "medium"}
	mustCreate(t, db, task)
	tag := &model.Tag{Name: "bug", Color: "#ff0000"}
	mustCreate(t, db, tag)
	mustCreate(t, db, &model.TaskTag{TaskID: task.ID, TagID: tag.ID})

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return CascadeTag(tx, tag.ID)
	}))

	require.Zero(t, count(t, db, &model.Tag{}, ""))
	require.Zero(t, count(t, db, &model.TaskTag{}, ""))
	require.EqualValues(t, 1, count(t, db, &model.Task{}, ""), "tagged tasks survive")
}
