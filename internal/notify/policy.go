package notify

import (
	"fmt"

	"github.com/bimakw/pmo/internal/model"
	"gorm.io/gorm"
)

// Policy maps an activity event to zero or more notifications. The mapping
// is policy, not mechanism: swapping it touches nothing else.
type Policy interface {
	Derive(db *gorm.DB, ev model.ActivityEvent) []model.Notification
}

// DefaultPolicy notifies assignees on assignment, project members on
// completion, assignees on other status changes, and assignees on comments.
type DefaultPolicy struct{}

func (DefaultPolicy) Derive(db *gorm.DB, ev model.ActivityEvent) []model.Notification {
	switch ev.Action {
	case model.ActionAssigned:
		return deriveAssigned(db, ev)
	case model.ActionStatusChanged:
		return deriveStatusChanged(db, ev)
	case model.ActionCommented:
		return deriveCommented(db, ev)
	}
	return nil
}

func deriveAssigned(db *gorm.DB, ev model.ActivityEvent) []model.Notification {
	to, ok := detailUint(ev.Detail, "to")
	if !ok || isActor(ev, to) {
		return nil
	}
	task, err := loadTask(db, ev.EntityID)
	if err != nil {
		return nil
	}
	return []model.Notification{{
		UserID:  to,
		Type:    model.NotifyTaskAssigned,
		Title:   "新任务指派",
		Message: fmt.Sprintf("任务「%s」已指派给你", task.Title),
		Link:    taskLink(task.ID),
	}}
}

func deriveStatusChanged(db *gorm.DB, ev model.ActivityEvent) []model.Notification {
	task, err := loadTask(db, ev.EntityID)
	if err != nil {
		return nil
	}
	toStatus, _ := ev.Detail["to"].(string)

	if toStatus == model.TaskDone {
		var memberIDs []uint
		db.Model(&model.ProjectMember{}).Where("project_id = ?", task.ProjectID).Pluck("user_id", &memberIDs)

		var out []model.Notification
		for _, uid := range memberIDs {
			if isActor(ev, uid) {
				continue
			}
			out = append(out, model.Notification{
				UserID:  uid,
				Type:    model.NotifyTaskCompleted,
				Title:   "任务已完成",
				Message: fmt.Sprintf("任务「%s」已标记为完成", task.Title),
				Link:    taskLink(task.ID),
			})
		}
		return out
	}

	if task.AssigneeID == nil || isActor(ev, *task.AssigneeID) {
		return nil
	}
	fromStatus, _ := ev.Detail["from"].(string)
	return []model.Notification{{
		UserID:  *task.AssigneeID,
		Type:    model.NotifyTaskUpdated,
		Title:   "任务状态变更",
		Message: fmt.Sprintf("任务「%s」状态从 %s 变更为 %s", task.Title, fromStatus, toStatus),
		Link:    taskLink(task.ID),
	}}
}

func deriveCommented(db *gorm.DB, ev model.ActivityEvent) []model.Notification {
	task, err := loadTask(db, ev.EntityID)
	if err != nil {
		return nil
	}
	if task.AssigneeID == nil || isActor(ev, *task.AssigneeID) {
		return nil
	}
	return []model.Notification{{
		UserID:  *task.AssigneeID,
		Type:    model.NotifyCommentAdded,
		Title:   "新评论",
		Message: fmt.Sprintf("任务「%s」有新评论", task.Title),
		Link:    taskLink(task.ID),
	}}
}

func loadTask(db *gorm.DB, id uint) (*model.Task, error) {
	var task model.Task
	if err := db.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func isActor(ev model.ActivityEvent, userID uint) bool {
	return ev.ActorID != nil && *ev.ActorID == userID
}

func taskLink(id uint) string {
	return fmt.Sprintf("/tasks/%d", id)
}

// detailUint reads a numeric detail value regardless of whether it kept its
// original type or went through a JSON round trip.
func detailUint(detail model.JSONMap, key string) (uint, bool) {
	switch v := detail[key].(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}
