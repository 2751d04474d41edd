package model

import "time"

// DefaultTagColor is applied when a tag is created without a color.
const DefaultTagColor = "#6b7280"

type Tag struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(64);uniqueIndex:uk_tag_name;not null" json:"name"`
	Color       string    `gorm:"type:varchar(7);not null;default:#6b7280" json:"color"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Tag) TableName() string { return "tags" }

type TaskTag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TaskID    uint      `gorm:"not null;uniqueIndex:uk_task_tag" json:"task_id"`
	TagID     uint      `gorm:"not null;uniqueIndex:uk_task_tag;index:idx_task_tag_tag" json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`

	Tag *Tag `gorm:"foreignKey:TagID" json:"tag,omitempty"`
}

func (TaskTag) TableName() string { return "task_tags" }
