package model

import "time"

// Hour bounds for a single time entry; hours are quantized to quarter hours.
const (
	MinEntryHours  = 0.25
	MaxEntryHours  = 24.0
	HoursIncrement = 0.25
)

type TimeEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TaskID      uint      `gorm:"not null;index:idx_entry_task" json:"task_id"`
	UserID      uint      `gorm:"not null;index:idx_entry_user" json:"user_id"`
	Hours       float64   `gorm:"type:decimal(4,2);not null" json:"hours"`
	EntryDate   time.Time `gorm:"type:date;not null;index:idx_entry_date" json:"date"`
	Description string    `gorm:"type:varchar(512)" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Task *Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}

func (TimeEntry) TableName() string { return "time_entries" }

// ValidHours reports whether h is inside the entry bounds and an exact
// multiple of the quarter-hour increment. Quarter hours are exact in binary
// floating point, so the comparison needs no epsilon.
func ValidHours(h float64) bool {
	if h < MinEntryHours || h > MaxEntryHours {
		return false
	}
	quarters := h / HoursIncrement
	return quarters == float64(int64(quarters))
}
