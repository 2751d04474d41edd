package service

import (
	"testing"

	"github.com/bimakw/pmo/internal/model"
	"github.com/bimakw/pmo/internal/store"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Team{},
		&model.TeamMember{},
		&model.Project{},
		&model.ProjectMember{},
		&model.Milestone{},
		&model.Task{},
		&model.Comment{},
		&model.Tag{},
		&model.TaskTag{},
		&model.TimeEntry{},
		&model.Attachment{},
		&model.ActivityEvent{},
		&model.Notification{},
	), "failed to migrate test database")

	t.Cleanup(func() { sqlDB.Close() })
	return store.New(db)
}

// fixture creates a user, a project owned by them and one todo task.
type fixture struct {
	st      *store.Store
	owner   *model.User
	project *model.Project
	task    *model.Task
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := newTestStore(t)

	owner := &model.User{Email: "owner@example.com", Name: "Owner", PasswordHash: "x", Role: model.RoleManager}
	require.NoError(t, st.DB().Create(owner).Error)

	project := &model.Project{Name: "Apollo", OwnerID: owner.ID, Status: model.ProjectActive, Priority: model.PriorityMedium}
	require.NoError(t, st.DB().Create(project).Error)
	require.NoError(t, st.DB().Create(&model.ProjectMember{ProjectID: project.ID, UserID: owner.ID, Role: "owner"}).Error)

	task := &model.Task{ProjectID: project.ID, Title: "Build", Status: model.TaskTodo, Priority: model.PriorityMedium}
	require.NoError(t, st.DB().Create(task).Error)

	return &fixture{st: st, owner: owner, project: project, task: task}
}

func (f *fixture) addUser(t *testing.T, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email, Name: email, PasswordHash: "x", Role: model.RoleMember}
	require.NoError(t, f.st.DB().Create(u).Error)
	return u
}

func (f *fixture) events(t *testing.T, entityType, action string) []model.ActivityEvent {
	t.Helper()
	var events []model.ActivityEvent
	q := f.st.DB().Order("id")
	if entityType != "" {
		q = q.Where("entity_type = ?", entityType)
	}
	if action != "" {
		q = q.Where("action = ?", action)
	}
	require.NoError(t, q.Find(&events).Error)
	return events
}
