package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

type JSONMap map[string]interface{}

func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	return string(b), err
}

func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case string:
		bytes = []byte(v)
	case []byte:
		bytes = v
	}
	return json.Unmarshal(bytes, j)
}

// Activity actions
const (
	ActionCreated       = "created"
	ActionUpdated       = "updated"
	ActionDeleted       = "deleted"
	ActionStatusChanged = "status_changed"
	ActionAssigned      = "assigned"
	ActionCommented     = "commented"
)

// ActivityEvent is append-only. Rows are never updated; they are removed
// only as a cascade of their project being deleted. ActorID is nulled when
// the acting user is deleted, the event itself stays.
type ActivityEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ActorID    *uint     `gorm:"index:idx_event_actor" json:"actor_id"`
	ProjectID  *uint     `gorm:"index:idx_event_project" json:"project_id"`
	Action     string    `gorm:"type:varchar(20);not null" json:"action"`
	EntityType string    `gorm:"type:varchar(32);not null;index:idx_event_entity,priority:1" json:"entity_type"`
	EntityID   uint      `gorm:"index:idx_event_entity,priority:2" json:"entity_id"`
	Detail     JSONMap   `gorm:"type:json" json:"detail"`
	CreatedAt  time.Time `gorm:"index:idx_event_created_at" json:"created_at"`

	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

func (ActivityEvent) TableName() string { return "activity_events" }
