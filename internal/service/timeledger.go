package service

import (
	"fmt"
	"time"

	"github.com/bimakw/pmo/internal/apperr"
	"github.com/bimakw/pmo/internal/model"
	"github.com/bimakw/pmo/internal/store"
	"gorm.io/gorm"
)

// TimeLedgerService accumulates per-task, per-user entries. Totals are
// summed from the entry set on every call, never cached.
type TimeLedgerService struct {
	store *store.Store
}

func NewTimeLedgerService(st *store.Store) *TimeLedgerService {
	return &TimeLedgerService{store: st}
}

func (s *TimeLedgerService) Record(actorID, taskID, userID uint, hours float64, date time.Time, description string) (*model.TimeEntry, error) {
	if !model.ValidHours(hours) {
		return nil, apperr.Validation("time_entry",
			fmt.Sprintf("工时必须在 %.2f-%.0f 小时之间，且为 %.2f 的倍数", model.MinEntryHours, model.MaxEntryHours, model.HoursIncrement))
	}

	entry := &model.TimeEntry{
		TaskID:      taskID,
		UserID:      userID,
		Hours:       hours,
		EntryDate:   date,
		Description: description,
	}
	err := s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var task model.Task
		if err := tx.First(&task, taskID).Error; err != nil {
			return apperr.NotFound("task", taskID, fmt.Sprintf("任务不存在: id=%d", taskID))
		}
		var user model.User
		if err := tx.First(&user, userID).Error; err != nil {
			return apperr.NotFound("user", userID, fmt.Sprintf("用户不存在: id=%d", userID))
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		rec.Record(&actorID, &task.ProjectID, model.ActionCreated, "time_entry", entry.ID,
			model.JSONMap{"task_id": taskID, "user_id": userID, "hours": hours})
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *TimeLedgerService) Delete(actorID, entryID uint) error {
	return s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var entry model.TimeEntry
		if err := tx.First(&entry, entryID).Error; err != nil {
			return apperr.NotFound("time_entry", entryID, fmt.Sprintf("工时记录不存在: id=%d", entryID))
		}
		var task model.Task
		if err := tx.First(&task, entry.TaskID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.TimeEntry{}, entryID).Error; err != nil {
			return err
		}
		rec.Record(&actorID, &task.ProjectID, model.ActionDeleted, "time_entry", entryID,
			model.JSONMap{"task_id": entry.TaskID, "hours": entry.Hours})
		return nil
	}))
}

// TaskTotal is the exact sum of the task's entries.
func (s *TimeLedgerService) TaskTotal(taskID uint) (float64, error) {
	var total float64
	err := s.store.DB().Model(&model.TimeEntry{}).Where("task_id = ?", taskID).
		Select("COALESCE(SUM(hours), 0)").Scan(&total).Error
	return total, err
}

// UserTotal sums a user's entries, optionally bounded by an inclusive date
// range.
func (s *TimeLedgerService) UserTotal(userID uint, from, to *time.Time) (float64, error) {
	query := s.store.DB().Model(&model.TimeEntry{}).Where("user_id = ?", userID)
	if from != nil {
		query = query.Where("entry_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("entry_date <= ?", *to)
	}
	var total float64
	err := query.Select("COALESCE(SUM(hours), 0)").Scan(&total).Error
	return total, err
}

// ProjectTotal sums every entry logged against the project's tasks.
func (s *TimeLedgerService) ProjectTotal(projectID uint) (float64, error) {
	var total float64
	err := s.store.DB().Model(&model.TimeEntry{}).
		Joins("JOIN tasks ON tasks.id = time_entries.task_id").
		Where("tasks.project_id = ?", projectID).
		Select("COALESCE(SUM(time_entries.hours), 0)").Scan(&total).Error
	return total, err
}

func (s *TimeLedgerService) ListByTask(taskID uint) ([]model.TimeEntry, error) {
	var entries []model.TimeEntry
	if err := s.store.DB().Preload("User").Where("task_id = ?", taskID).
		Order("entry_date desc, id desc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *TimeLedgerService) ListByUser(userID uint, from, to *time.Time) ([]model.TimeEntry, error) {
	query := s.store.DB().Preload("Task").Where("user_id = ?", userID)
	if from != nil {
		query = query.Where("entry_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("entry_date <= ?", *to)
	}
	var entries []model.TimeEntry
	if err := query.Order("entry_date desc, id desc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
