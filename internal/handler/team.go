package handler

import (
	"github.com/bimakw/pmo/internal/middleware"
	"github.com/bimakw/pmo/internal/service"
	"github.com/gin-gonic/gin"
)

type TeamHandler struct {
	teamService *service.TeamService
}

func NewTeamHandler(teamService *service.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// POST /teams
func (h *TeamHandler) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required,max=128"`
		Description string `json:"description" binding:"max=5000"`
		LeadID      *uint  `json:"lead_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "参数校验失败: "+err.Error())
		return
	}

	team, err := h.teamService.Create(middleware.GetCurrentUserID(c), req.Name, req.Description, req.LeadID)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, team)
}

// GET /teams
func (h *TeamHandler) List(c *gin.Context) {
	page, pageSize := parsePage(c)
	teams, total, err := h.teamService.List(c.Query("keyword"), page, pageSize)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	SuccessPaged(c, teams, total, page, pageSize)
}

// GET /teams/:id
func (h *TeamHandler) GetDetail(c *gin.Context) {
	team, err := h.teamService.GetByID(parseID(c.Param("id")))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, team)
}

// PUT /teams/:id
func (h *TeamHandler) Update(c *gin.Context) {
	var req struct {
		Name        *string `json:"name" binding:"omitempty,max=128"`
		Description *string `json:"description" binding:"omitempty,max=5000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "参数校验失败: "+err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	team, err := h.teamService.Update(middleware.GetCurrentUserID(c), parseID(c.Param("id")), updates)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, team)
}

// PUT /teams/:id/lead
func (h *TeamHandler) SetLead(c *gin.Context) {
	var req struct {
		LeadID *uint `json:"lead_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "参数校验失败: "+err.Error())
		return
	}

	team, err := h.teamService.SetLead(middleware.GetCurrentUserID(c), parseID(c.Param("id")), req.LeadID)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, team)
}

// DELETE /teams/:id
func (h *TeamHandler) Delete(c *gin.Context) {
	if err := h.teamService.Delete(middleware.GetCurrentUserID(c), parseID(c.Param("id"))); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}

// POST /teams/:id/members
func (h *TeamHandler) AddMember(c *gin.Context) {
	var req struct {
		UserID uint   `json:"user_id" binding:"required"`
		Role   string `json:"role" binding:"omitempty,oneof=lead member"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "参数校验失败: "+err.Error())
		return
	}
	if req.Role == "" {
		req.Role = "member"
	}

	if err := h.teamService.AddMember(middleware.GetCurrentUserID(c), parseID(c.Param("id")), req.UserID, req.Role); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}

// DELETE /teams/:id/members/:user_id
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	err := h.teamService.RemoveMember(middleware.GetCurrentUserID(c), parseID(c.Param("id")), parseID(c.Param("user_id")))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}
