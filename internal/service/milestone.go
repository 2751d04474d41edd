package service

import (
	"fmt"
	"time"

	"github.com/bimakw/pmo/internal/apperr"
	"github.com/bimakw/pmo/internal/model"
	"github.com/bimakw/pmo/internal/store"
	"gorm.io/gorm"
)

type MilestoneService struct {
	store *store.Store
}

func NewMilestoneService(st *store.Store) *MilestoneService {
	return &MilestoneService{store: st}
}

func (s *MilestoneService) Create(actorID, projectID uint, name, description string, dueDate *time.Time) (*model.Milestone, error) {
	if name == "" {
		return nil, apperr.Validation("milestone", "里程碑名称不能为空")
	}

	milestone := &model.Milestone{
		ProjectID:   projectID,
		Name:        name,
		Description: description,
		DueDate:     dueDate,
	}
	err := s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var project model.Project
		if err := tx.First(&project, projectID).Error; err != nil {
			return apperr.NotFound("project", projectID, fmt.Sprintf("项目不存在: id=%d", projectID))
		}
		if err := tx.Create(milestone).Error; err != nil {
			return err
		}
		rec.Record(&actorID, &projectID, model.ActionCreated, "milestone", milestone.ID,
			model.JSONMap{"name": name})
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return milestone, nil
}

func (s *MilestoneService) Update(actorID, id uint, updates map[string]interface{}) (*model.Milestone, error) {
	var milestone model.Milestone
	err := s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		if err := tx.First(&milestone, id).Error; err != nil {
			return apperr.NotFound("milestone", id, fmt.Sprintf("里程碑不存在: id=%d", id))
		}
		if err := tx.Model(&model.Milestone{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		rec.Record(&actorID, &milestone.ProjectID, model.ActionUpdated, "milestone", id, model.JSONMap(updates))
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// Delete detaches referencing tasks instead of removing them.
func (s *MilestoneService) Delete(actorID, id uint) error {
	return s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var milestone model.Milestone
		if err := tx.First(&milestone, id).Error; err != nil {
			return apperr.NotFound("milestone", id, fmt.Sprintf("里程碑不存在: id=%d", id))
		}
		if err := store.CascadeMilestone(tx, id); err != nil {
			return err
		}
		rec.Record(&actorID, &milestone.ProjectID, model.ActionDeleted, "milestone", id,
			model.JSONMap{"name": milestone.Name})
		return nil
	}))
}

func (s *MilestoneService) GetByID(id uint) (*model.Milestone, error) {
	var milestone model.Milestone
	if err := s.store.DB().First(&milestone, id).Error; err != nil {
		return nil, apperr.NotFound("milestone", id, fmt.Sprintf("里程碑不存在: id=%d", id))
	}
	return &milestone, nil
}

func (s *MilestoneService) ListByProject(projectID uint) ([]model.Milestone, error) {
	var milestones []model.Milestone
	if err := s.store.DB().Where("project_id = ?", projectID).Order("due_date IS NULL, due_date, id").Find(&milestones).Error; err != nil {
		return nil, err
	}
	return milestones, nil
}
