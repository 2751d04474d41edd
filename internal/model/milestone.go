package model

import "time"

type Milestone struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ProjectID   uint       `gorm:"not null;index:idx_milestone_project" json:"project_id"`
	Name        string     `gorm:"type:varchar(128);not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Milestone) TableName() string { return "milestones" }
