package service

import (
	"fmt"

	"github.com/bimakw/pmo/internal/apperr"
	"github.com/bimakw/pmo/internal/model"
	"github.com/bimakw/pmo/internal/store"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 100
)

// ActivityService reads the append-only feed. Writes happen exclusively
// inside store.Exec.
type ActivityService struct {
	store *store.Store
}

func NewActivityService(st *store.Store) *ActivityService {
	return &ActivityService{store: st}
}

// List returns events newest first, ordered by (created_at, id) descending.
// before is an event id cursor; pages are stable while no rows are inserted
// because the cursor pins an exact position in the total order.
func (s *ActivityService) List(projectID *uint, limit int, before *uint) ([]model.ActivityEvent, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}

	query := s.store.DB().Model(&model.ActivityEvent{})
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}
	if before != nil {
		var cursor model.ActivityEvent
		if err := s.store.DB().First(&cursor, *before).Error; err != nil {
			return nil, apperr.NotFound("activity_event", *before, fmt.Sprintf("分页游标不存在: id=%d", *before))
		}
		query = query.Where("created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var events []model.ActivityEvent
	if err := query.Preload("Actor").Order("created_at desc, id desc").Limit(limit).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// ListByEntity returns the history of a single entity, newest first.
func (s *ActivityService) ListByEntity(entityType string, entityID uint, limit int) ([]model.ActivityEvent, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	var events []model.ActivityEvent
	err := s.store.DB().Preload("Actor").
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at desc, id desc").Limit(limit).Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
