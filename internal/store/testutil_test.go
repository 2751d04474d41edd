package store

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
	require.NoError(t, err, "failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// In-memory sqlite is per-connection; keep the pool at one.
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
	return db
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(newTestDB(t))
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	require.NoError(t, db.Create(value).Error)
}
