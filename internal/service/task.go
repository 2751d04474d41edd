package service

import (
	"fmt"
	"time"

	"github.com/bimakw/pmo/internal/apperr"
	"github.com/bimakw/pmo/internal/model"
	"github.com/bimakw/pmo/internal/store"
	"gorm.io/gorm"
)

// TaskService owns the task lifecycle. Transitions are not restricted to a
// fixed table, but every one of them lands in the activity feed with its
// {from, to} pair, and assignment changes are audited independently.
type TaskService struct {
	store *store.Store
	// autofillActualHours defaults actual_hours from the time ledger on the
	// first transition to done when the caller did not supply a value.
	autofillActualHours bool
}

func NewTaskService(st *store.Store, autofillActualHours bool) *TaskService {
	return &TaskService{store: st, autofillActualHours: autofillActualHours}
}

type CreateTaskInput struct {
	ProjectID      uint
	MilestoneID    *uint
	Title          string
	Description    string
	Status         string
	Priority       string
	AssigneeID     *uint
	DueDate        *time.Time
	EstimatedHours *float64
}

// UpdateTaskInput patches a task. Nil fields are untouched; the Clear flags
// null out the corresponding weak reference.
type UpdateTaskInput struct {
	Title          *string
	Description    *string
	Status         *string
	Priority       *string
	MilestoneID    *uint
	ClearMilestone bool
	AssigneeID     *uint
	ClearAssignee  bool
	DueDate        *time.Time
	EstimatedHours *float64
	ActualHours    *float64
}

func (s *TaskService) Create(actorID uint, in CreateTaskInput) (*model.Task, error) {
	if in.Title == "" {
		return nil, apperr.Validation("task", "任务标题不能为空")
	}
	if in.Status == "" {
		in.Status = model.TaskTodo
	}
	if !model.ValidTaskStatus(in.Status) {
		return nil, apperr.Validation("task", "未知的任务状态: "+in.Status)
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if !model.ValidPriority(in.Priority) {
		return nil, apperr.Validation("task", "未知的优先级: "+in.Priority)
	}
	if in.EstimatedHours != nil && *in.EstimatedHours < 0 {
		return nil, apperr.Validation("task", "预估工时不能为负数")
	}

	task := &model.Task{
		ProjectID:      in.ProjectID,
		MilestoneID:    in.MilestoneID,
		Title:          in.Title,
		Description:    in.Description,
		Status:         in.Status,
		Priority:       in.Priority,
		AssigneeID:     in.AssigneeID,
		DueDate:        in.DueDate,
		EstimatedHours: in.EstimatedHours,
	}
	err := s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var project model.Project
		if err := tx.First(&project, in.ProjectID).Error; err != nil {
			return apperr.NotFound("project", in.ProjectID, fmt.Sprintf("项目不存在: id=%d", in.ProjectID))
		}
		if in.MilestoneID != nil {
			var milestone model.Milestone
			if err := tx.First(&milestone, *in.MilestoneID).Error; err != nil {
				return apperr.NotFound("milestone", *in.MilestoneID, fmt.Sprintf("里程碑不存在: id=%d", *in.MilestoneID))
			}
			if milestone.ProjectID != in.ProjectID {
				return apperr.Validation("task", "里程碑不属于该项目")
			}
		}
		if in.AssigneeID != nil {
			var assignee model.User
			if err := tx.First(&assignee, *in.AssigneeID).Error; err != nil {
				return apperr.NotFound("user", *in.AssigneeID, fmt.Sprintf("用户不存在: id=%d", *in.AssigneeID))
			}
		}
		if err := tx.Create(task).Error; err != nil {
			return err
		}
		rec.Record(&actorID, &task.ProjectID, model.ActionCreated, "task", task.ID,
			model.JSONMap{"title": task.Title, "status": task.Status})
		if task.AssigneeID != nil {
			rec.Record(&actorID, &task.ProjectID, model.ActionAssigned, "task", task.ID,
				model.JSONMap{"from": nil, "to": *task.AssigneeID})
		}
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return s.GetByID(task.ID)
}

func (s *TaskService) Update(actorID, id uint, in UpdateTaskInput) (*model.Task, error) {
	if in.Status != nil && !model.ValidTaskStatus(*in.Status) {
		return nil, apperr.Validation("task", "未知的任务状态: "+*in.Status)
	}
	if in.Priority != nil && !model.ValidPriority(*in.Priority) {
		return nil, apperr.Validation("task", "未知的优先级: "+*in.Priority)
	}
	if in.EstimatedHours != nil && *in.EstimatedHours < 0 {
		return nil, apperr.Validation("task", "预估工时不能为负数")
	}
	if in.ActualHours != nil && *in.ActualHours < 0 {
		return nil, apperr.Validation("task", "实际工时不能为负数")
	}

	err := s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var task model.Task
		if err := tx.First(&task, id).Error; err != nil {
			return apperr.NotFound("task", id, fmt.Sprintf("任务不存在: id=%d", id))
		}

		updates := map[string]interface{}{}
		if in.Title != nil {
			if *in.Title == "" {
				return apperr.Validation("task", "任务标题不能为空")
			}
			updates["title"] = *in.Title
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.Priority != nil {
			updates["priority"] = *in.Priority
		}
		if in.DueDate != nil {
			updates["due_date"] = *in.DueDate
		}
		if in.EstimatedHours != nil {
			updates["estimated_hours"] = *in.EstimatedHours
		}
		if in.ActualHours != nil {
			updates["actual_hours"] = *in.ActualHours
		}
		if in.ClearMilestone {
			updates["milestone_id"] = nil
		} else if in.MilestoneID != nil {
			var milestone model.Milestone
			if err := tx.First(&milestone, *in.MilestoneID).Error; err != nil {
				return apperr.NotFound("milestone", *in.MilestoneID, fmt.Sprintf("里程碑不存在: id=%d", *in.MilestoneID))
			}
			if milestone.ProjectID != task.ProjectID {
				return apperr.Validation("task", "里程碑不属于该项目")
			}
			updates["milestone_id"] = *in.MilestoneID
		}

		if len(updates) > 0 {
			if err := tx.Model(&model.Task{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
			rec.Record(&actorID, &task.ProjectID, model.ActionUpdated, "task", id, model.JSONMap(updates))
		}

		if in.Status != nil && *in.Status != task.Status {
			if err := s.applyStatusChange(tx, rec, &task, actorID, *in.Status, in.ActualHours != nil); err != nil {
				return err
			}
		}

		if in.ClearAssignee || in.AssigneeID != nil {
			var newAssignee *uint
			if !in.ClearAssignee {
				newAssignee = in.AssigneeID
			}
			if err := s.applyAssignment(tx, rec, &task, actorID, newAssignee); err != nil {
				return err
			}
		}

		if len(rec.Events()) == 0 {
			return apperr.Validation("task", "没有需要更新的字段")
		}
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// Transition sets the task status. Any status can be set from any other;
// the transition is always audited with its {from, to} pair.
func (s *TaskService) Transition(actorID, id uint, newStatus string) (*model.Task, error) {
	if !model.ValidTaskStatus(newStatus) {
		return nil, apperr.Validation("task", "未知的任务状态: "+newStatus)
	}

	err := s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var task model.Task
		if err := tx.First(&task, id).Error; err != nil {
			return apperr.NotFound("task", id, fmt.Sprintf("任务不存在: id=%d", id))
		}
		if task.Status == newStatus {
			// Setting the current status again is still audited.
			rec.Record(&actorID, &task.ProjectID, model.ActionStatusChanged, "task", id,
				model.JSONMap{"from": task.Status, "to": newStatus})
			return nil
		}
		return s.applyStatusChange(tx, rec, &task, actorID, newStatus, false)
	}))
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// Assign sets or clears the assignee and emits an assigned event.
func (s *TaskService) Assign(actorID, id uint, assigneeID *uint) (*model.Task, error) {
	err := s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var task model.Task
		if err := tx.First(&task, id).Error; err != nil {
			return apperr.NotFound("task", id, fmt.Sprintf("任务不存在: id=%d", id))
		}
		return s.applyAssignment(tx, rec, &task, actorID, assigneeID)
	}))
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

func (s *TaskService) applyStatusChange(tx *gorm.DB, rec *store.Recorder, task *model.Task, actorID uint, newStatus string, actualSupplied bool) error {
	updates := map[string]interface{}{"status": newStatus}
	if newStatus == model.TaskDone && task.ActualHours == nil && !actualSupplied && s.autofillActualHours {
		var total float64
		if err := tx.Model(&model.TimeEntry{}).Where("task_id = ?", task.ID).
			Select("COALESCE(SUM(hours), 0)").Scan(&total).Error; err != nil {
			return err
		}
		if total > 0 {
			updates["actual_hours"] = total
		}
	}
	if err := tx.Model(&model.Task{}).Where("id = ?", task.ID).Updates(updates).Error; err != nil {
		return err
	}
	rec.Record(&actorID, &task.ProjectID, model.ActionStatusChanged, "task", task.ID,
		model.JSONMap{"from": task.Status, "to": newStatus})
	task.Status = newStatus
	return nil
}

func (s *TaskService) applyAssignment(tx *gorm.DB, rec *store.Recorder, task *model.Task, actorID uint, assigneeID *uint) error {
	same := (task.AssigneeID == nil && assigneeID == nil) ||
		(task.AssigneeID != nil && assigneeID != nil && *task.AssigneeID == *assigneeID)
	if same {
		return nil
	}
	if assigneeID != nil {
		var assignee model.User
		if err := tx.First(&assignee, *assigneeID).Error; err != nil {
			return apperr.NotFound("user", *assigneeID, fmt.Sprintf("用户不存在: id=%d", *assigneeID))
		}
	}
	if err := tx.Model(&model.Task{}).Where("id = ?", task.ID).Update("assignee_id", assigneeID).Error; err != nil {
		return err
	}
	detail := model.JSONMap{"from": nil, "to": nil}
	if task.AssigneeID != nil {
		detail["from"] = *task.AssigneeID
	}
	if assigneeID != nil {
		detail["to"] = *assigneeID
	}
	rec.Record(&actorID, &task.ProjectID, model.ActionAssigned, "task", task.ID, detail)
	task.AssigneeID = assigneeID
	return nil
}

// Delete removes the task and its comments, attachments, tag links and time
// entries in one transaction.
func (s *TaskService) Delete(actorID, id uint) error {
	return s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var task model.Task
		if err := tx.First(&task, id).Error; err != nil {
			return apperr.NotFound("task", id, fmt.Sprintf("任务不存在: id=%d", id))
		}
		if err := store.CascadeTask(tx, id); err != nil {
			return err
		}
		rec.Record(&actorID, &task.ProjectID, model.ActionDeleted, "task", id,
			model.JSONMap{"title": task.Title})
		return nil
	}))
}

func (s *TaskService) GetByID(id uint) (*model.Task, error) {
	var task model.Task
	if err := s.store.DB().Preload("Milestone").Preload("Assignee").First(&task, id).Error; err != nil {
		return nil, apperr.NotFound("task", id, fmt.Sprintf("任务不存在: id=%d", id))
	}
	return &task, nil
}

func (s *TaskService) ListByProject(projectID uint, status string, assigneeID, milestoneID *uint, page, pageSize int) ([]model.Task, int64, error) {
	query := s.store.DB().Model(&model.Task{}).Where("project_id = ?", projectID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if assigneeID != nil {
		query = query.Where("assignee_id = ?", *assigneeID)
	}
	if milestoneID != nil {
		query = query.Where("milestone_id = ?", *milestoneID)
	}

	var total int64
	query.Count(&total)

	var tasks []model.Task
	if err := query.Preload("Assignee").Preload("Milestone").Order("updated_at desc").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&tasks).Error; err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (s *TaskService) ListByAssignee(userID uint, status string) ([]model.Task, error) {
	query := s.store.DB().Where("assignee_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var tasks []model.Task
	if err := query.Preload("Project").Order("due_date IS NULL, due_date").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *TaskService) AddComment(actorID, taskID uint, content string) (*model.Comment, error) {
	if content == "" {
		return nil, apperr.Validation("comment", "评论内容不能为空")
	}
	comment := &model.Comment{TaskID: taskID, UserID: actorID, Content: content}
	err := s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var task model.Task
		if err := tx.First(&task, taskID).Error; err != nil {
			return apperr.NotFound("task", taskID, fmt.Sprintf("任务不存在: id=%d", taskID))
		}
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		rec.Record(&actorID, &task.ProjectID, model.ActionCommented, "task", taskID,
			model.JSONMap{"comment_id": comment.ID})
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *TaskService) DeleteComment(actorID, commentID uint) error {
	return s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var comment model.Comment
		if err := tx.First(&comment, commentID).Error; err != nil {
			return apperr.NotFound("comment", commentID, fmt.Sprintf("评论不存在: id=%d", commentID))
		}
		var task model.Task
		if err := tx.First(&task, comment.TaskID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Comment{}, commentID).Error; err != nil {
			return err
		}
		rec.Record(&actorID, &task.ProjectID, model.ActionDeleted, "comment", commentID,
			model.JSONMap{"task_id": comment.TaskID})
		return nil
	}))
}

func (s *TaskService) ListComments(taskID uint) ([]model.Comment, error) {
	var comments []model.Comment
	if err := s.store.DB().Preload("User").Where("task_id = ?", taskID).Order("id").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *TaskService) AttachTag(actorID, taskID, tagID uint) error {
	return s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var task model.Task
		if err := tx.First(&task, taskID).Error; err != nil {
			return apperr.NotFound("task", taskID, fmt.Sprintf("任务不存在: id=%d", taskID))
		}
		var tag model.Tag
		if err := tx.First(&tag, tagID).Error; err != nil {
			return apperr.NotFound("tag", tagID, fmt.Sprintf("标签不存在: id=%d", tagID))
		}
		var count int64
		tx.Model(&model.TaskTag{}).Where("task_id = ? AND tag_id = ?", taskID, tagID).Count(&count)
		if count > 0 {
			return apperr.Validation("task_tag", "任务已关联该标签")
		}
		link := &model.TaskTag{TaskID: taskID, TagID: tagID}
		if err := tx.Create(link).Error; err != nil {
			return err
		}
		rec.Record(&actorID, &task.ProjectID, model.ActionCreated, "task_tag", link.ID,
			model.JSONMap{"task_id": taskID, "tag_id": tagID})
		return nil
	}))
}

func (s *TaskService) DetachTag(actorID, taskID, tagID uint) error {
	return s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var task model.Task
		if err := tx.First(&task, taskID).Error; err != nil {
			return apperr.NotFound("task", taskID, fmt.Sprintf("任务不存在: id=%d", taskID))
		}
		var link model.TaskTag
		if err := tx.Where("task_id = ? AND tag_id = ?", taskID, tagID).First(&link).Error; err != nil {
			return apperr.NotFound("task_tag", tagID, "任务未关联该标签")
		}
		if err := tx.Delete(&model.TaskTag{}, link.ID).Error; err != nil {
			return err
		}
		rec.Record(&actorID, &task.ProjectID, model.ActionDeleted, "task_tag", link.ID,
			model.JSONMap{"task_id": taskID, "tag_id": tagID})
		return nil
	}))
}

func (s *TaskService) ListTags(taskID uint) ([]model.Tag, error) {
	var tags []model.Tag
	err := s.store.DB().Model(&model.Tag{}).
		Joins("JOIN task_tags ON task_tags.tag_id = tags.id").
		Where("task_tags.task_id = ?", taskID).
		Order("tags.name").Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}
