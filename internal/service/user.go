package service

import (
	"fmt"

	"github.com/bimakw/pmo/internal/apperr"
	"github.com/bimakw/pmo/internal/model"
	"github.com/bimakw/pmo/internal/store"
	"gorm.io/gorm"
)

type UserService struct {
	store *store.Store
}

func NewUserService(st *store.Store) *UserService {
	return &UserService{store: st}
}

func (s *UserService) Create(actorID uint, email, name, passwordHash, role string) (*model.User, error) {
	if role == "" {
		role = model.RoleMember
	}
	if !model.ValidUserRole(role) {
		return nil, apperr.Validation("user", "未知的用户角色: "+role)
	}
	if email == "" || name == "" {
		return nil, apperr.Validation("user", "邮箱和姓名不能为空")
	}

	user := &model.User{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Role:         role,
	}
	err := s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var count int64
		tx.Model(&model.User{}).Where("email = ?", email).Count(&count)
		if count > 0 {
			return apperr.Validation("user", "邮箱已被注册: "+email)
		}
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		actor := &actorID
		if actorID == 0 {
			// Self-registration: the new user is its own actor.
			actor = &user.ID
		}
		rec.Record(actor, nil, model.ActionCreated, "user", user.ID, model.JSONMap{"email": email, "role": role})
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Update(actorID, id uint, updates map[string]interface{}) (*model.User, error) {
	if len(updates) == 0 {
		return nil, apperr.Validation("user", "没有需要更新的字段")
	}
	if role, ok := updates["role"].(string); ok && !model.ValidUserRole(role) {
		return nil, apperr.Validation("user", "未知的用户角色: "+role)
	}

	// The activity feed is readable by every authenticated user, so the
	// credential hash never goes into the recorded detail.
	detail := model.JSONMap{}
	for k, v := range updates {
		if k == "password_hash" {
			detail["password_changed"] = true
			continue
		}
		detail[k] = v
	}

	err := s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var user model.User
		if err := tx.First(&user, id).Error; err != nil {
			return apperr.NotFound("user", id, fmt.Sprintf("用户不存在: id=%d", id))
		}
		if email, ok := updates["email"].(string); ok {
			var count int64
			tx.Model(&model.User{}).Where("email = ? AND id != ?", email, id).Count(&count)
			if count > 0 {
				return apperr.Validation("user", "邮箱已被注册: "+email)
			}
		}
		if err := tx.Model(&model.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		rec.Record(&actorID, nil, model.ActionUpdated, "user", id, detail)
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// Delete rejects while the user still owns projects; everything else the
// user touches is cascaded or nullified in one transaction.
func (s *UserService) Delete(actorID, id uint) error {
	return s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var user model.User
		if err := tx.First(&user, id).Error; err != nil {
			return apperr.NotFound("user", id, fmt.Sprintf("用户不存在: id=%d", id))
		}
		if err := store.CascadeUser(tx, id); err != nil {
			return err
		}
		actor := &actorID
		if actorID == id {
			actor = nil
		}
		rec.Record(actor, nil, model.ActionDeleted, "user", id, model.JSONMap{"email": user.Email})
		return nil
	}))
}

func (s *UserService) GetByID(id uint) (*model.User, error) {
	var user model.User
	if err := s.store.DB().First(&user, id).Error; err != nil {
		return nil, apperr.NotFound("user", id, fmt.Sprintf("用户不存在: id=%d", id))
	}
	return &user, nil
}

func (s *UserService) GetByEmail(email string) (*model.User, error) {
	var user model.User
	if err := s.store.DB().Where("email = ?", email).First(&user).Error; err != nil {
		return nil, apperr.NotFound("user", 0, "用户不存在: email="+email)
	}
	return &user, nil
}

func (s *UserService) List(keyword, role string, page, pageSize int) ([]model.User, int64, error) {
	query := s.store.DB().Model(&model.User{})
	if keyword != "" {
		query = query.Where("name LIKE ? OR email LIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}
	if role != "" {
		query = query.Where("role = ?", role)
	}

	var total int64
	query.Count(&total)

	var users []model.User
	if err := query.Order("id").Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *UserService) Search(keyword string, excludeProjectID *uint, limit int) ([]model.User, error) {
	query := s.store.DB().Model(&model.User{})
	if keyword != "" {
		query = query.Where("name LIKE ? OR email LIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}
	if excludeProjectID != nil {
		query = query.Where("id NOT IN (SELECT user_id FROM project_members WHERE project_id = ?)", *excludeProjectID)
	}

	var users []model.User
	if err := query.Limit(limit).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
