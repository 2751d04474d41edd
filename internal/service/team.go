package service

import (
	"fmt"

	"github.com/bimakw/pmo/internal/apperr"
	"github.com/bimakw/pmo/internal/model"
	"github.com/bimakw/pmo/internal/store"
	"gorm.io/gorm"
)

type TeamService struct {
	store *store.Store
}

func NewTeamService(st *store.Store) *TeamService {
	return &TeamService{store: st}
}

func (s *TeamService) Create(actorID uint, name, description string, leadID *uint) (*model.Team, error) {
	if name == "" {
		return nil, apperr.Validation("team", "团队名称不能为空")
	}

	team := &model.Team{Name: name, Description: description, LeadID: leadID}
	err := s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		if leadID != nil {
			var lead model.User
			if err := tx.First(&lead, *leadID).Error; err != nil {
				return apperr.NotFound("user", *leadID, fmt.Sprintf("用户不存在: id=%d", *leadID))
			}
		}
		if err := tx.Create(team).Error; err != nil {
			return err
		}
		if leadID != nil {
			member := &model.TeamMember{TeamID: team.ID, UserID: *leadID, Role: model.TeamRoleLead}
			if err := tx.Create(member).Error; err != nil {
				return err
			}
		}
		rec.Record(&actorID, nil, model.ActionCreated, "team", team.ID, model.JSONMap{"name": name})
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return s.GetByID(team.ID)
}

func (s *TeamService) Update(actorID, id uint, updates map[string]interface{}) (*model.Team, error) {
	err := s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var team model.Team
		if err := tx.First(&team, id).Error; err != nil {
			return apperr.NotFound("team", id, fmt.Sprintf("团队不存在: id=%d", id))
		}
		if err := tx.Model(&model.Team{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		rec.Record(&actorID, nil, model.ActionUpdated, "team", id, model.JSONMap(updates))
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// SetLead changes the team lead; nil clears it. The lead keeps or gains a
// membership row with the lead role.
func (s *TeamService) SetLead(actorID, teamID uint, leadID *uint) (*model.Team, error) {
	err := s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var team model.Team
		if err := tx.First(&team, teamID).Error; err != nil {
			return apperr.NotFound("team", teamID, fmt.Sprintf("团队不存在: id=%d", teamID))
		}
		if team.LeadID != nil {
			tx.Model(&model.TeamMember{}).Where("team_id = ? AND user_id = ?", teamID, *team.LeadID).
				Update("role", model.TeamRoleMember)
		}
		if leadID != nil {
			var lead model.User
			if err := tx.First(&lead, *leadID).Error; err != nil {
				return apperr.NotFound("user", *leadID, fmt.Sprintf("用户不存在: id=%d", *leadID))
			}
			var count int64
			tx.Model(&model.TeamMember{}).Where("team_id = ? AND user_id = ?", teamID, *leadID).Count(&count)
			if count == 0 {
				if err := tx.Create(&model.TeamMember{TeamID: teamID, UserID: *leadID, Role: model.TeamRoleLead}).Error; err != nil {
					return err
				}
			} else {
				tx.Model(&model.TeamMember{}).Where("team_id = ? AND user_id = ?", teamID, *leadID).
					Update("role", model.TeamRoleLead)
			}
		}
		if err := tx.Model(&model.Team{}).Where("id = ?", teamID).Update("lead_id", leadID).Error; err != nil {
			return err
		}
		detail := model.JSONMap{"lead_id": nil}
		if leadID != nil {
			detail["lead_id"] = *leadID
		}
		rec.Record(&actorID, nil, model.ActionUpdated, "team", teamID, detail)
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return s.GetByID(teamID)
}

func (s *TeamService) Delete(actorID, id uint) error {
	return s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var team model.Team
		if err := tx.First(&team, id).Error; err != nil {
			return apperr.NotFound("team", id, fmt.Sprintf("团队不存在: id=%d", id))
		}
		if err := store.CascadeTeam(tx, id); err != nil {
			return err
		}
		rec.Record(&actorID, nil, model.ActionDeleted, "team", id, model.JSONMap{"name": team.Name})
		return nil
	}))
}

func (s *TeamService) AddMember(actorID, teamID, userID uint, role string) error {
	if role == "" {
		role = model.TeamRoleMember
	}
	if !model.ValidTeamRole(role) {
		return apperr.Validation("team_member", "未知的团队角色: "+role)
	}
	return s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var team model.Team
		if err := tx.First(&team, teamID).Error; err != nil {
			return apperr.NotFound("team", teamID, fmt.Sprintf("团队不存在: id=%d", teamID))
		}
		var user model.User
		if err := tx.First(&user, userID).Error; err != nil {
			return apperr.NotFound("user", userID, fmt.Sprintf("用户不存在: id=%d", userID))
		}
		var count int64
		tx.Model(&model.TeamMember{}).Where("team_id = ? AND user_id = ?", teamID, userID).Count(&count)
		if count > 0 {
			return apperr.Validation("team_member", "该用户已是团队成员")
		}
		member := &model.TeamMember{TeamID: teamID, UserID: userID, Role: role}
		if err := tx.Create(member).Error; err != nil {
			return err
		}
		rec.Record(&actorID, nil, model.ActionCreated, "team_member", member.ID,
			model.JSONMap{"team_id": teamID, "user_id": userID, "role": role})
		return nil
	}))
}

func (s *TeamService) RemoveMember(actorID, teamID, userID uint) error {
	return s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var member model.TeamMember
		if err := tx.Where("team_id = ? AND user_id = ?", teamID, userID).First(&member).Error; err != nil {
			return apperr.NotFound("team_member", userID, "该用户不是团队成员")
		}
		if err := tx.Delete(&model.TeamMember{}, member.ID).Error; err != nil {
			return err
		}
		// Removing the lead clears the weak reference as well.
		if err := tx.Model(&model.Team{}).Where("id = ? AND lead_id = ?", teamID, userID).Update("lead_id", nil).Error; err != nil {
			return err
		}
		rec.Record(&actorID, nil, model.ActionDeleted, "team_member", member.ID,
			model.JSONMap{"team_id": teamID, "user_id": userID})
		return nil
	}))
}

func (s *TeamService) GetByID(id uint) (*model.Team, error) {
	var team model.Team
	if err := s.store.DB().Preload("Lead").Preload("Members.User").First(&team, id).Error; err != nil {
		return nil, apperr.NotFound("team", id, fmt.Sprintf("团队不存在: id=%d", id))
	}
	return &team, nil
}

func (s *TeamService) List(keyword string, page, pageSize int) ([]model.Team, int64, error) {
	query := s.store.DB().Model(&model.Team{})
	if keyword != "" {
		query = query.Where("name LIKE ?", "%"+keyword+"%")
	}

	var total int64
	query.Count(&total)

	var teams []model.Team
	if err := query.Preload("Lead").Order("id").Offset((page - 1) * pageSize).Limit(pageSize).Find(&teams).Error; err != nil {
		return nil, 0, err
	}
	return teams, total, nil
}
