package handler

import (
	"time"

	"github.com/bimakw/pmo/internal/middleware"
	"github.com/bimakw/pmo/internal/service"
	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	projectService *service.ProjectService
	ledgerService  *service.TimeLedgerService
}

func NewProjectHandler(projectService *service.ProjectService, ledgerService *service.TimeLedgerService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, ledgerService: ledgerService}
}

// POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req struct {
		Name        string     `json:"name" binding:"required,max=128"`
		Description string     `json:"description" binding:"max=5000"`
		Status      string     `json:"status" binding:"omitempty,oneof=planning active onhold completed cancelled"`
		Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high critical"`
		StartDate   *time.Time `json:"start_date"`
		EndDate     *time.Time `json:"end_date"`
		Budget      *float64   `json:"budget"`
		MemberIDs   []uint     `json:"member_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "参数校验失败: "+err.Error())
		return
	}

	userID := middleware.GetCurrentUserID(c)
	project, err := h.projectService.Create(userID, service.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Budget:      req.Budget,
		OwnerID:     userID,
		MemberIDs:   req.MemberIDs,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, project)
}

// GET /projects
func (h *ProjectHandler) List(c *gin.Context) {
	page, pageSize := parsePage(c)

	var ownerID *uint
	if s := c.Query("owner_id"); s != "" {
		v := parseID(s)
		ownerID = &v
	}

	projects, total, err := h.projectService.List(
		middleware.GetCurrentUserID(c), middleware.IsAdmin(c),
		c.Query("keyword"), c.Query("status"), ownerID, page, pageSize)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	list := make([]gin.H, 0, len(projects))
	for _, p := range projects {
		item := gin.H{
			"id":          p.ID,
			"name":        p.Name,
			"description": p.Description,
			"status":      p.Status,
			"priority":    p.Priority,
			"start_date":  p.StartDate,
			"end_date":    p.EndDate,
			"budget":      p.Budget,
			"owner_id":    p.OwnerID,
			"created_at":  p.CreatedAt,
			"updated_at":  p.UpdatedAt,
		}
		if p.Owner != nil {
			item["owner"] = p.Owner.Brief()
		}
		list = append(list, item)
	}
	SuccessPaged(c, list, total, page, pageSize)
}

// GET /projects/:id
func (h *ProjectHandler) GetDetail(c *gin.Context) {
	id := parseID(c.Param("id"))

	if !middleware.IsAdmin(c) && !h.projectService.IsMember(id, middleware.GetCurrentUserID(c)) {
		Forbidden(c, 40302, "非项目成员，无权查看")
		return
	}

	project, err := h.projectService.GetByID(id)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, project)
}

// PUT /projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	var req struct {
		Name        *string    `json:"name" binding:"omitempty,max=128"`
		Description *string    `json:"description" binding:"omitempty,max=5000"`
		Status      *string    `json:"status" binding:"omitempty,oneof=planning active onhold completed cancelled"`
		Priority    *string    `json:"priority" binding:"omitempty,oneof=low medium high critical"`
		StartDate   *time.Time `json:"start_date"`
		EndDate     *time.Time `json:"end_date"`
		Budget      *float64   `json:"budget"`
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
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if req.StartDate != nil {
		updates["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		updates["end_date"] = *req.EndDate
	}
	if req.Budget != nil {
		updates["budget"] = *req.Budget
	}

	project, err := h.projectService.Update(middleware.GetCurrentUserID(c), parseID(c.Param("id")), updates)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, project)
}

// POST /projects/:id/transfer
func (h *ProjectHandler) TransferOwner(c *gin.Context) {
	var req struct {
		NewOwnerID uint `json:"new_owner_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "参数校验失败: "+err.Error())
		return
	}

	project, err := h.projectService.TransferOwner(middleware.GetCurrentUserID(c), parseID(c.Param("id")), req.NewOwnerID)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, project)
}

// DELETE /projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id := parseID(c.Param("id"))

	project, err := h.projectService.GetByID(id)
	if err != nil {
		RespondError(c, err)
		return
	}
	if !middleware.IsAdmin(c) && project.OwnerID != middleware.GetCurrentUserID(c) {
		Forbidden(c, 40301, "仅项目负责人或管理员可删除项目")
		return
	}

	if err := h.projectService.Delete(middleware.GetCurrentUserID(c), id); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}

// POST /projects/:id/members
func (h *ProjectHandler) AddMembers(c *gin.Context) {
	var req struct {
		UserIDs []uint `json:"user_ids" binding:"required,min=1"`
		Role    string `json:"role" binding:"omitempty,oneof=member manager"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "参数校验失败: "+err.Error())
		return
	}
	if req.Role == "" {
		req.Role = "member"
	}

	added, skipped, err := h.projectService.AddMembers(middleware.GetCurrentUserID(c), parseID(c.Param("id")), req.UserIDs, req.Role)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"added": added, "skipped": skipped})
}

// DELETE /projects/:id/members/:user_id
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	err := h.projectService.RemoveMember(middleware.GetCurrentUserID(c), parseID(c.Param("id")), parseID(c.Param("user_id")))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}

// GET /projects/:id/stats
func (h *ProjectHandler) Stats(c *gin.Context) {
	id := parseID(c.Param("id"))
	if _, err := h.projectService.GetByID(id); err != nil {
		RespondError(c, err)
		return
	}

	stats := h.projectService.Stats(id)
	totalHours, err := h.ledgerService.ProjectTotal(id)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	data := gin.H{"total_hours": totalHours}
	for k, v := range stats {
		data[k] = v
	}
	Success(c, data)
}
