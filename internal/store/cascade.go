package store

import (
	"fmt"

	"github.com/bimakw/pmo/internal/apperr"
	"github.com/bimakw/pmo/internal/model"
	"gorm.io/gorm"
)

// Cascade policies, applied inside the deleting transaction. Dependent rows
// are resolved before any destructive write so a partial cascade is never
// visible. Callers check existence first; these functions only apply the
// closure.

// CascadeProject removes everything scoped to the project: its tasks and
// their children, milestones, memberships and project-scoped activity.
func CascadeProject(tx *gorm.DB, projectID uint) error {
	var taskIDs []uint
	if err := tx.Model(&model.Task{}).Where("project_id = ?", projectID).Pluck("id", &taskIDs).Error; err != nil {
		return err
	}
	if len(taskIDs) > 0 {
		if err := deleteTaskChildren(tx, taskIDs); err != nil {
			return err
		}
	}

	steps := []*gorm.DB{
		tx.Where("project_id = ?", projectID).Delete(&model.Task{}),
		tx.Where("project_id = ?", projectID).Delete(&model.Milestone{}),
		tx.Where("project_id = ?", projectID).Delete(&model.ProjectMember{}),
		tx.Where("project_id = ?", projectID).Delete(&model.ActivityEvent{}),
		tx.Delete(&model.Project{}, projectID),
	}
	for _, step := range steps {
		if step.Error != nil {
			return step.Error
		}
	}
	return nil
}

// CascadeUser applies the user deletion policy: restrict while the user
// owns projects, otherwise cascade owned rows and nullify weak references.
func CascadeUser(tx *gorm.DB, userID uint) error {
	var ownedIDs []uint
	if err := tx.Model(&model.Project{}).Where("owner_id = ?", userID).Pluck("id", &ownedIDs).Error; err != nil {
		return err
	}
	if len(ownedIDs) > 0 {
		return apperr.Conflict("user", userID,
			fmt.Sprintf("用户仍是 %d 个项目的所有者，请先转移项目归属", len(ownedIDs)), ownedIDs)
	}

	steps := []*gorm.DB{
		tx.Where("user_id = ?", userID).Delete(&model.TeamMember{}),
		tx.Where("user_id = ?", userID).Delete(&model.ProjectMember{}),
		tx.Where("user_id = ?", userID).Delete(&model.Comment{}),
		tx.Where("user_id = ?", userID).Delete(&model.TimeEntry{}),
		tx.Where("uploaded_by = ?", userID).Delete(&model.Attachment{}),
		tx.Where("user_id = ?", userID).Delete(&model.Notification{}),
		tx.Model(&model.Team{}).Where("lead_id = ?", userID).Update("lead_id", nil),
		tx.Model(&model.Task{}).Where("assignee_id = ?", userID).Update("assignee_id", nil),
		tx.Model(&model.ActivityEvent{}).Where("actor_id = ?", userID).Update("actor_id", nil),
		tx.Delete(&model.User{}, userID),
	}
	for _, step := range steps {
		if step.Error != nil {
			return step.Error
		}
	}
	return nil
}

// CascadeTask removes the task's comments, attachments, tag links and time
// entries along with the task row.
func CascadeTask(tx *gorm.DB, taskID uint) error {
	if err := deleteTaskChildren(tx, []uint{taskID}); err != nil {
		return err
	}
	return tx.Delete(&model.Task{}, taskID).Error
}

// CascadeMilestone nullifies task references; the tasks survive.
func CascadeMilestone(tx *gorm.DB, milestoneID uint) error {
	if err := tx.Model(&model.Task{}).Where("milestone_id = ?", milestoneID).Update("milestone_id", nil).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Milestone{}, milestoneID).Error
}

func CascadeTag(tx *gorm.DB, tagID uint) error {
	if err := tx.Where("tag_id = ?", tagID).Delete(&model.TaskTag{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Tag{}, tagID).Error
}

func CascadeTeam(tx *gorm.DB, teamID uint) error {
	if err := tx.Where("team_id = ?", teamID).Delete(&model.TeamMember{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Team{}, teamID).Error
}

func deleteTaskChildren(tx *gorm.DB, taskIDs []uint) error {
	steps := []*gorm.DB{
		tx.Where("task_id IN ?", taskIDs).Delete(&model.Comment{}),
		tx.Where("task_id IN ?", taskIDs).Delete(&model.Attachment{}),
		tx.Where("task_id IN ?", taskIDs).Delete(&model.TaskTag{}),
		tx.Where("task_id IN ?", taskIDs).Delete(&model.TimeEntry{}),
	}
	for _, step := range steps {
		if step.Error != nil {
			return step.Error
		}
	}
	return nil
}
