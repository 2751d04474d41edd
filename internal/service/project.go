package service

import (
	"fmt"
	"time"

	"github.com/bimakw/pmo/internal/apperr"
	"github.com/bimakw/pmo/internal/model"
	"github.com/bimakw/pmo/internal/store"
	"gorm.io/gorm"
)

type ProjectService struct {
	store *store.Store
}

func NewProjectService(st *store.Store) *ProjectService {
	return &ProjectService{store: st}
}

type CreateProjectInput struct {
	Name        string
	Description string
	Status      string
	Priority    string
	StartDate   *time.Time
	EndDate     *time.Time
	Budget      *float64
	OwnerID     uint
	MemberIDs   []uint
}

func (s *ProjectService) Create(actorID uint, in CreateProjectInput) (*model.Project, error) {
	if in.Name == "" {
		return nil, apperr.Validation("project", "项目名称不能为空")
	}
	if in.Status == "" {
		in.Status = model.ProjectPlanning
	}
	if !model.ValidProjectStatus(in.Status) {
		return nil, apperr.Validation("project", "未知的项目状态: "+in.Status)
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if !model.ValidPriority(in.Priority) {
		return nil, apperr.Validation("project", "未知的优先级: "+in.Priority)
	}

	project := &model.Project{
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Budget:      in.Budget,
		OwnerID:     in.OwnerID,
	}
	err := s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var owner model.User
		if err := tx.First(&owner, in.OwnerID).Error; err != nil {
			return apperr.NotFound("user", in.OwnerID, fmt.Sprintf("项目所有者不存在: id=%d", in.OwnerID))
		}
		if err := tx.Create(project).Error; err != nil {
			return err
		}

		// Owner is always a member.
		ownerMember := &model.ProjectMember{ProjectID: project.ID, UserID: in.OwnerID, Role: "owner"}
		if err := tx.Create(ownerMember).Error; err != nil {
			return err
		}
		for _, uid := range in.MemberIDs {
			if uid == in.OwnerID {
				continue
			}
			var user model.User
			if err := tx.First(&user, uid).Error; err != nil {
				return apperr.NotFound("user", uid, fmt.Sprintf("用户不存在: id=%d", uid))
			}
			member := &model.ProjectMember{ProjectID: project.ID, UserID: uid, Role: "member"}
			if err := tx.Create(member).Error; err != nil {
				return err
			}
		}

		rec.Record(&actorID, &project.ID, model.ActionCreated, "project", project.ID,
			model.JSONMap{"name": project.Name, "owner_id": project.OwnerID})
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return s.GetByID(project.ID)
}

func (s *ProjectService) Update(actorID, id uint, updates map[string]interface{}) (*model.Project, error) {
	if status, ok := updates["status"].(string); ok && !model.ValidProjectStatus(status) {
		return nil, apperr.Validation("project", "未知的项目状态: "+status)
	}
	if priority, ok := updates["priority"].(string); ok && !model.ValidPriority(priority) {
		return nil, apperr.Validation("project", "未知的优先级: "+priority)
	}
	if ownerID, ok := updates["owner_id"]; ok {
		_ = ownerID
		return nil, apperr.Validation("project", "项目归属转移请使用 owner 接口")
	}

	err := s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var project model.Project
		if err := tx.First(&project, id).Error; err != nil {
			return apperr.NotFound("project", id, fmt.Sprintf("项目不存在: id=%d", id))
		}
		if err := tx.Model(&model.Project{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		rec.Record(&actorID, &id, model.ActionUpdated, "project", id, model.JSONMap(updates))
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// TransferOwner reassigns project ownership; the previous owner stays a member.
func (s *ProjectService) TransferOwner(actorID, id, newOwnerID uint) (*model.Project, error) {
	err := s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var project model.Project
		if err := tx.First(&project, id).Error; err != nil {
			return apperr.NotFound("project", id, fmt.Sprintf("项目不存在: id=%d", id))
		}
		var owner model.User
		if err := tx.First(&owner, newOwnerID).Error; err != nil {
			return apperr.NotFound("user", newOwnerID, fmt.Sprintf("用户不存在: id=%d", newOwnerID))
		}
		if project.OwnerID == newOwnerID {
			return apperr.Validation("project", "该用户已是项目所有者")
		}
		if err := tx.Model(&model.Project{}).Where("id = ?", id).Update("owner_id", newOwnerID).Error; err != nil {
			return err
		}
		var count int64
		tx.Model(&model.ProjectMember{}).Where("project_id = ? AND user_id = ?", id, newOwnerID).Count(&count)
		if count == 0 {
			if err := tx.Create(&model.ProjectMember{ProjectID: id, UserID: newOwnerID, Role: "owner"}).Error; err != nil {
				return err
			}
		}
		rec.Record(&actorID, &id, model.ActionUpdated, "project", id,
			model.JSONMap{"owner_id": model.JSONMap{"from": project.OwnerID, "to": newOwnerID}})
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// Delete removes the project and everything scoped to it, including its
// activity history, as one transaction.
func (s *ProjectService) Delete(actorID, id uint) error {
	return s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var project model.Project
		if err := tx.First(&project, id).Error; err != nil {
			return apperr.NotFound("project", id, fmt.Sprintf("项目不存在: id=%d", id))
		}
		if err := store.CascadeProject(tx, id); err != nil {
			return err
		}
		// No project scope on the event: project-scoped rows were just removed.
		rec.Record(&actorID, nil, model.ActionDeleted, "project", id, model.JSONMap{"name": project.Name})
		return nil
	}))
}

func (s *ProjectService) GetByID(id uint) (*model.Project, error) {
	var project model.Project
	if err := s.store.DB().Preload("Owner").Preload("Members.User").First(&project, id).Error; err != nil {
		return nil, apperr.NotFound("project", id, fmt.Sprintf("项目不存在: id=%d", id))
	}
	return &project, nil
}

func (s *ProjectService) List(userID uint, isAdmin bool, keyword, status string, ownerID *uint, page, pageSize int) ([]model.Project, int64, error) {
	query := s.store.DB().Model(&model.Project{})

	if !isAdmin {
		query = query.Where("id IN (SELECT project_id FROM project_members WHERE user_id = ?)", userID)
	}
	if keyword != "" {
		query = query.Where("name LIKE ?", "%"+keyword+"%")
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if ownerID != nil {
		query = query.Where("owner_id = ?", *ownerID)
	}

	var total int64
	query.Count(&total)

	var projects []model.Project
	if err := query.Preload("Owner").Order("updated_at desc").Offset((page - 1) * pageSize).Limit(pageSize).Find(&projects).Error; err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func (s *ProjectService) IsMember(projectID, userID uint) bool {
	var count int64
	s.store.DB().Model(&model.ProjectMember{}).Where("project_id = ? AND user_id = ?", projectID, userID).Count(&count)
	return count > 0
}

func (s *ProjectService) MemberIDs(projectID uint) []uint {
	var ids []uint
	s.store.DB().Model(&model.ProjectMember{}).Where("project_id = ?", projectID).Pluck("user_id", &ids)
	return ids
}

func (s *ProjectService) AddMembers(actorID, projectID uint, userIDs []uint, role string) ([]model.UserBrief, []uint, error) {
	if role == "" {
		role = "member"
	}
	var added []model.UserBrief
	var skipped []uint

	err := s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		added, skipped = nil, nil
		var project model.Project
		if err := tx.First(&project, projectID).Error; err != nil {
			return apperr.NotFound("project", projectID, fmt.Sprintf("项目不存在: id=%d", projectID))
		}
		for _, uid := range userIDs {
			var user model.User
			if err := tx.First(&user, uid).Error; err != nil {
				return apperr.NotFound("user", uid, fmt.Sprintf("用户不存在: id=%d", uid))
			}
			var count int64
			tx.Model(&model.ProjectMember{}).Where("project_id = ? AND user_id = ?", projectID, uid).Count(&count)
			if count > 0 {
				skipped = append(skipped, uid)
				continue
			}
			member := &model.ProjectMember{ProjectID: projectID, UserID: uid, Role: role}
			if err := tx.Create(member).Error; err != nil {
				return err
			}
			rec.Record(&actorID, &projectID, model.ActionCreated, "project_member", member.ID,
				model.JSONMap{"user_id": uid, "role": role})
			added = append(added, model.UserBrief{ID: user.ID, Name: user.Name, Role: role})
		}
		if len(added) == 0 {
			return apperr.Validation("project_member", "所选用户均已是项目成员")
		}
		return nil
	}))
	if err != nil {
		return nil, nil, err
	}
	return added, skipped, nil
}

func (s *ProjectService) RemoveMember(actorID, projectID, userID uint) error {
	return s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var project model.Project
		if err := tx.First(&project, projectID).Error; err != nil {
			return apperr.NotFound("project", projectID, fmt.Sprintf("项目不存在: id=%d", projectID))
		}
		if project.OwnerID == userID {
			return apperr.Conflict("project_member", userID, "不能移除项目所有者", []uint{projectID})
		}
		var member model.ProjectMember
		if err := tx.Where("project_id = ? AND user_id = ?", projectID, userID).First(&member).Error; err != nil {
			return apperr.NotFound("project_member", userID, "该用户不是项目成员")
		}
		if err := tx.Delete(&model.ProjectMember{}, member.ID).Error; err != nil {
			return err
		}
		rec.Record(&actorID, &projectID, model.ActionDeleted, "project_member", member.ID,
			model.JSONMap{"user_id": userID})
		return nil
	}))
}

// Stats returns task counts per status plus member and milestone counts.
func (s *ProjectService) Stats(projectID uint) map[string]int64 {
	db := s.store.DB()
	stats := make(map[string]int64)
	for _, st := range []string{model.TaskTodo, model.TaskInProgress, model.TaskReview, model.TaskDone, model.TaskBlocked} {
		var count int64
		db.Model(&model.Task{}).Where("project_id = ? AND status = ?", projectID, st).Count(&count)
		stats[st] = count
	}
	var total int64
	db.Model(&model.Task{}).Where("project_id = ?", projectID).Count(&total)
	stats["total_tasks"] = total

	var members int64
	db.Model(&model.ProjectMember{}).Where("project_id = ?", projectID).Count(&members)
	stats["member_count"] = members

	var milestones int64
	db.Model(&model.Milestone{}).Where("project_id = ?", projectID).Count(&milestones)
	stats["milestone_count"] = milestones
	return stats
}
