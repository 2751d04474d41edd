package model

import "time"

type Task struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ProjectID      uint       `gorm:"not null;index:idx_task_project" json:"project_id"`
	MilestoneID    *uint      `gorm:"index:idx_task_milestone" json:"milestone_id"`
	Title          string     `gorm:"type:varchar(256);not null" json:"title"`
	Description    string     `gorm:"type:text" json:"description"`
	Status         string     `gorm:"type:varchar(10);not null;default:todo;index:idx_task_status" json:"status"`
	Priority       string     `gorm:"type:varchar(10);not null;default:medium" json:"priority"`
	AssigneeID     *uint      `gorm:"index:idx_task_assignee" json:"assignee_id"`
	DueDate        *time.Time `json:"due_date"`
	EstimatedHours *float64   `gorm:"type:decimal(7,2)" json:"estimated_hours"`
	ActualHours    *float64   `gorm:"type:decimal(7,2)" json:"actual_hours"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Project   *Project   `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Milestone *Milestone `gorm:"foreignKey:MilestoneID" json:"milestone,omitempty"`
	Assignee  *User      `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
}

func (Task) TableName() string { return "tasks" }

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TaskID    uint      `gorm:"not null;index:idx_comment_task" json:"task_id"`
	UserID    uint      `gorm:"not null;index:idx_comment_user" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Comment) TableName() string { return "task_comments" }
