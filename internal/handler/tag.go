package handler

import (
	"github.com/bimakw/pmo/internal/middleware"
	"github.com/bimakw/pmo/internal/service"
	"github.com/gin-gonic/gin"
)

type TagHandler struct {
	tagService *service.TagService
}

func NewTagHandler(tagService *service.TagService) *TagHandler {
	return &TagHandler{tagService: tagService}
}

// POST /tags
func (h *TagHandler) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required,max=64"`
		Color       string `json:"color" binding:"omitempty,max=7"`
		Description string `json:"description" binding:"max=512"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "参数校验失败: "+err.Error())
		return
	}

	tag, err := h.tagService.Create(middleware.GetCurrentUserID(c), req.Name, req.Color, req.Description)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, tag)
}

// GET /tags
func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.tagService.List(c.Query("keyword"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, tags)
}

// PUT /tags/:id
func (h *TagHandler) Update(c *gin.Context) {
	var req struct {
		Name        *string `json:"name" binding:"omitempty,max=64"`
		Color       *string `json:"color" binding:"omitempty,max=7"`
		Description *string `json:"description" binding:"omitempty,max=512"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "参数校验失败: "+err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Color != nil {
		updates["color"] = *req.Color
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	tag, err := h.tagService.Update(middleware.GetCurrentUserID(c), parseID(c.Param("id")), updates)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, tag)
}

// DELETE /tags/:id
func (h *TagHandler) Delete(c *gin.Context) {
	if err := h.tagService.Delete(middleware.GetCurrentUserID(c), parseID(c.Param("id"))); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}
