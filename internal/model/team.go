package model

import "time"

type Team struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(128);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	LeadID      *uint     `gorm:"index:idx_lead_id" json:"lead_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Lead    *User        `gorm:"foreignKey:LeadID" json:"lead,omitempty"`
	Members []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}

func (Team) TableName() string { return "teams" }

type TeamMember struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	TeamID   uint      `gorm:"not null;uniqueIndex:uk_team_user" json:"team_id"`
	UserID   uint      `gorm:"not null;uniqueIndex:uk_team_user;index:idx_team_member_user" json:"user_id"`
	Role     string    `gorm:"type:varchar(10);not null;default:member" json:"role"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (TeamMember) TableName() string { return "team_members" }
