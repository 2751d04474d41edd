package model

import "time"

type Project struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"type:varchar(128);not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	Status      string     `gorm:"type:varchar(10);not null;default:planning;index:idx_status" json:"status"`
	Priority    string     `gorm:"type:varchar(10);not null;default:medium" json:"priority"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Budget      *float64   `gorm:"type:decimal(12,2)" json:"budget"`
	OwnerID     uint       `gorm:"not null;index:idx_owner_id" json:"owner_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Owner   *User           `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Members []ProjectMember `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
}

func (Project) TableName() string { return "projects" }

type ProjectMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"not null;uniqueIndex:uk_project_user" json:"project_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:uk_project_user;index:idx_project_member_user" json:"user_id"`
	Role      string    `gorm:"type:varchar(32);not null" json:"role"`
	JoinedAt  time.Time `gorm:"autoCreateTime" json:"joined_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (ProjectMember) TableName() string { return "project_members" }
