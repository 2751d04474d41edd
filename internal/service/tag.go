package service

import (
	"fmt"
	"regexp"

	"github.com/bimakw/pmo/internal/apperr"
	"github.com/bimakw/pmo/internal/model"
	"github.com/bimakw/pmo/internal/store"
	"gorm.io/gorm"
)

// Tag names are unique case-sensitively.
var tagColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type TagService struct {
	store *store.Store
}

func NewTagService(st *store.Store) *TagService {
	return &TagService{store: st}
}

func (s *TagService) Create(actorID uint, name, color, description string) (*model.Tag, error) {
	if name == "" {
		return nil, apperr.Validation("tag", "标签名称不能为空")
	}
	if color == "" {
		color = model.DefaultTagColor
	}
	if !tagColorPattern.MatchString(color) {
		return nil, apperr.Validation("tag", "颜色必须为 #RRGGBB 格式: "+color)
	}

	tag := &model.Tag{Name: name, Color: color, Description: description}
	err := s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var count int64
		tx.Model(&model.Tag{}).Where("name = ?", name).Count(&count)
		if count > 0 {
			return apperr.Validation("tag", "标签名称已存在: "+name)
		}
		if err := tx.Create(tag).Error; err != nil {
			return err
		}
		rec.Record(&actorID, nil, model.ActionCreated, "tag", tag.ID, model.JSONMap{"name": name, "color": color})
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *TagService) Update(actorID, id uint, updates map[string]interface{}) (*model.Tag, error) {
	if color, ok := updates["color"].(string); ok && !tagColorPattern.MatchString(color) {
		return nil, apperr.Validation("tag", "颜色必须为 #RRGGBB 格式: "+color)
	}

	err := s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var tag model.Tag
		if err := tx.First(&tag, id).Error; err != nil {
			return apperr.NotFound("tag", id, fmt.Sprintf("标签不存在: id=%d", id))
		}
		if name, ok := updates["name"].(string); ok {
			var count int64
			tx.Model(&model.Tag{}).Where("name = ? AND id != ?", name, id).Count(&count)
			if count > 0 {
				return apperr.Validation("tag", "标签名称已存在: "+name)
			}
		}
		if err := tx.Model(&model.Tag{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		rec.Record(&actorID, nil, model.ActionUpdated, "tag", id, model.JSONMap(updates))
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// Delete removes the tag and all its task links.
func (s *TagService) Delete(actorID, id uint) error {
	return s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var tag model.Tag
		if err := tx.First(&tag, id).Error; err != nil {
			return apperr.NotFound("tag", id, fmt.Sprintf("标签不存在: id=%d", id))
		}
		if err := store.CascadeTag(tx, id); err != nil {
			return err
		}
		rec.Record(&actorID, nil, model.ActionDeleted, "tag", id, model.JSONMap{"name": tag.Name})
		return nil
	}))
}

func (s *TagService) GetByID(id uint) (*model.Tag, error) {
	var tag model.Tag
	if err := s.store.DB().First(&tag, id).Error; err != nil {
		return nil, apperr.NotFound("tag", id, fmt.Sprintf("标签不存在: id=%d", id))
	}
	return &tag, nil
}

func (s *TagService) List(keyword string) ([]model.Tag, error) {
	query := s.store.DB().Model(&model.Tag{})
	if keyword != "" {
		query = query.Where("name LIKE ?", "%"+keyword+"%")
	}
	var tags []model.Tag
	if err := query.Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}
