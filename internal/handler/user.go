package handler

import (
	"github.com/bimakw/pmo/internal/middleware"
	"github.com/bimakw/pmo/internal/service"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// POST /admin/users
func (h *UserHandler) Create(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Name     string `json:"name" binding:"required,max=128"`
		Password string `json:"password" binding:"required,min=8,max=72"`
		Role     string `json:"role" binding:"omitempty,oneof=admin manager member"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "参数校验失败: "+err.Error())
		return
	}
	if req.Role == "" {
		req.Role = "member"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		InternalError(c, "密码加密失败")
		return
	}

	user, err := h.userService.Create(middleware.GetCurrentUserID(c), req.Email, req.Name, string(hash), req.Role)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, user)
}

// GET /users
func (h *UserHandler) List(c *gin.Context) {
	page, pageSize := parsePage(c)
	users, total, err := h.userService.List(c.Query("keyword"), c.Query("role"), page, pageSize)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	list := make([]gin.H, 0, len(users))
	for _, u := range users {
		list = append(list, gin.H{
			"id":         u.ID,
			"email":      u.Email,
			"name":       u.Name,
			"role":       u.Role,
			"created_at": u.CreatedAt,
		})
	}
	SuccessPaged(c, list, total, page, pageSize)
}

// GET /users/search?keyword=xx&exclude_project_id=1
func (h *UserHandler) Search(c *gin.Context) {
	keyword := c.Query("keyword")
	if keyword == "" {
		Success(c, []gin.H{})
		return
	}

	var excludeProjectID *uint
	if s := c.Query("exclude_project_id"); s != "" {
		v := parseID(s)
		excludeProjectID = &v
	}

	users, err := h.userService.Search(keyword, excludeProjectID, 20)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	list := make([]gin.H, 0, len(users))
	for _, u := range users {
		list = append(list, gin.H{"id": u.ID, "name": u.Name, "email": u.Email})
	}
	Success(c, list)
}

// GET /users/:id
func (h *UserHandler) GetDetail(c *gin.Context) {
	user, err := h.userService.GetByID(parseID(c.Param("id")))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, user)
}

// PUT /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id := parseID(c.Param("id"))
	if !middleware.IsAdmin(c) && middleware.GetCurrentUserID(c) != id {
		Forbidden(c, 40301, "只能修改本人资料")
		return
	}

	var req struct {
		Name     *string `json:"name" binding:"omitempty,max=128"`
		Role     *string `json:"role" binding:"omitempty,oneof=admin manager member"`
		Password *string `json:"password" binding:"omitempty,min=8,max=72"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "参数校验失败: "+err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Role != nil {
		if !middleware.IsAdmin(c) {
			Forbidden(c, 40301, "仅管理员可修改角色")
			return
		}
		updates["role"] = *req.Role
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			InternalError(c, "密码加密失败")
			return
		}
		updates["password_hash"] = string(hash)
	}

	user, err := h.userService.Update(middleware.GetCurrentUserID(c), id, updates)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, user)
}

// DELETE /admin/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.userService.Delete(middleware.GetCurrentUserID(c), parseID(c.Param("id"))); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}
