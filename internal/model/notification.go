package model

import "time"

// Notification types the UI cares about.
const (
	NotifyTaskAssigned   = "task_assigned"
	NotifyTaskUpdated    = "task_updated"
	NotifyTaskCompleted  = "task_completed"
	NotifyTaskDueSoon    = "task_due_soon"
	NotifyProjectUpdated = "project_updated"
	NotifyCommentAdded   = "comment_added"
	NotifyMention        = "mention"
	NotifySystem         = "system"
)

type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_notification_user" json:"user_id"`
	Type      string    `gorm:"type:varchar(20);not null" json:"type"`
	Title     string    `gorm:"type:varchar(256);not null" json:"title"`
	Message   string    `gorm:"type:text" json:"message"`
	Link      string    `gorm:"type:varchar(512)" json:"link,omitempty"`
	IsRead    bool      `gorm:"not null;default:false;index:idx_notification_read" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
