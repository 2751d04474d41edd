package handler

import (
	"time"

	"github.com/bimakw/pmo/internal/middleware"
	"github.com/bimakw/pmo/internal/service"
	"github.com/gin-gonic/gin"
)

type MilestoneHandler struct {
	milestoneService *service.MilestoneService
}

func NewMilestoneHandler(milestoneService *service.MilestoneService) *MilestoneHandler {
	return &MilestoneHandler{milestoneService: milestoneService}
}

// POST /projects/:id/milestones
func (h *MilestoneHandler) Create(c *gin.Context) {
	var req struct {
		Name        string     `json:"name" binding:"required,max=128"`
		Description string     `json:"description" binding:"max=5000"`
		DueDate     *time.Time `json:"due_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "参数校验失败: "+err.Error())
		return
	}

	milestone, err := h.milestoneService.Create(middleware.GetCurrentUserID(c), parseID(c.Param("id")), req.Name, req.Description, req.DueDate)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, milestone)
}

// GET /projects/:id/milestones
func (h *MilestoneHandler) ListByProject(c *gin.Context) {
	milestones, err := h.milestoneService.ListByProject(parseID(c.Param("id")))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, milestones)
}

// GET /milestones/:id
func (h *MilestoneHandler) GetDetail(c *gin.Context) {
	milestone, err := h.milestoneService.GetByID(parseID(c.Param("id")))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, milestone)
}

// PUT /milestones/:id
func (h *MilestoneHandler) Update(c *gin.Context) {
	var req struct {
		Name        *string    `json:"name" binding:"omitempty,max=128"`
		Description *string    `json:"description" binding:"omitempty,max=5000"`
		DueDate     *time.Time `json:"due_date"`
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
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}

	milestone, err := h.milestoneService.Update(middleware.GetCurrentUserID(c), parseID(c.Param("id")), updates)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, milestone)
}

// DELETE /milestones/:id
func (h *MilestoneHandler) Delete(c *gin.Context) {
	if err := h.milestoneService.Delete(middleware.GetCurrentUserID(c), parseID(c.Param("id"))); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}
