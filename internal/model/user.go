package model

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(128);uniqueIndex:uk_email;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(256);not null" json:"-"`
	Name         string    `gorm:"type:varchar(64);not null" json:"name"`
	Role         string    `gorm:"type:varchar(10);not null;default:member;index:idx_role" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

type UserBrief struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

func (u *User) Brief() UserBrief {
	return UserBrief{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}
