package handler

import (
	"time"

	"github.com/bimakw/pmo/internal/middleware"
	"github.com/bimakw/pmo/internal/model"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	db *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// GET /dashboard/stats
func (h *DashboardHandler) GetStats(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	now := time.Now().UTC()

	var myProjects int64
	h.db.Model(&model.ProjectMember{}).Where("user_id = ?", userID).Count(&myProjects)

	var myOpenTasks int64
	h.db.Model(&model.Task{}).
		Where("assignee_id = ? AND status <> ?", userID, model.TaskDone).
		Count(&myOpenTasks)

	var overdue int64
	h.db.Model(&model.Task{}).
		Where("assignee_id = ? AND due_date < ? AND status <> ?", userID, now, model.TaskDone).
		Count(&overdue)

	weekStart := now.Truncate(24 * time.Hour).AddDate(0, 0, -int(now.Weekday()))
	var hoursThisWeek float64
	h.db.Model(&model.TimeEntry{}).
		Where("user_id = ? AND entry_date >= ?", userID, weekStart).
		Select("COALESCE(SUM(hours), 0)").Scan(&hoursThisWeek)

	var unread int64
	h.db.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).Count(&unread)

	// Recent activity in the user's projects (last 10)
	var recent []model.ActivityEvent
	h.db.Preload("Actor").
		Where("project_id IN (SELECT project_id FROM project_members WHERE user_id = ?)", userID).
		Order("created_at desc, id desc").Limit(10).Find(&recent)

	recentActivity := make([]gin.H, 0, len(recent))
	for _, ev := range recent {
		item := gin.H{
			"id":          ev.ID,
			"action":      ev.Action,
			"entity_type": ev.EntityType,
			"entity_id":   ev.EntityID,
			"project_id":  ev.ProjectID,
			"detail":      ev.Detail,
			"time":        ev.CreatedAt,
		}
		if ev.Actor != nil {
			item["actor"] = ev.Actor.Brief()
		}
		recentActivity = append(recentActivity, item)
	}

	Success(c, gin.H{
		"my_projects":          myProjects,
		"my_open_tasks":        myOpenTasks,
		"my_overdue_tasks":     overdue,
		"hours_this_week":      hoursThisWeek,
		"unread_notifications": unread,
		"recent_activity":      recentActivity,
	})
}
