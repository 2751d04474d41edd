package handler

import (
	"net/http"

	"time"

	"github.com/bimakw/pmo/internal/config"
	"github.com/bimakw/pmo/internal/middleware"
	"github.com/bimakw/pmo/internal/service"
	"github.com/bimakw/pmo/pkg/jwt"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	userService *service.UserService
}

func NewAuthHandler(userService *service.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Name     string `json:"name" binding:"required,max=128"`
		Password string `json:"password" binding:"required,min=8,max=72"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "参数校验失败: "+err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		InternalError(c, "密码加密失败")
		return
	}

	// Self-registration always lands on the member role.
	user, err := h.userService.Create(0, req.Email, req.Name, string(hash), "member")
	if err != nil {
		RespondError(c, err)
		return
	}

	token, expiresAt, err := h.issueToken(user.ID, user.Role)
	if err != nil {
		InternalError(c, "Token 生成失败")
		return
	}

	Success(c, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"user":       user.Brief(),
	})
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "参数校验失败: "+err.Error())
		return
	}

	user, err := h.userService.GetByEmail(req.Email)
	if err != nil {
		Error(c, http.StatusUnauthorized, 40104, "邮箱或密码错误")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		Error(c, http.StatusUnauthorized, 40104, "邮箱或密码错误")
		return
	}

	token, expiresAt, err := h.issueToken(user.ID, user.Role)
	if err != nil {
		InternalError(c, "Token 生成失败")
		return
	}

	Success(c, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"user":       user.Brief(),
	})
}

// GET /auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		Error(c, http.StatusUnauthorized, 40103, "用户未认证")
		return
	}
	Success(c, gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"name":       user.Name,
		"role":       user.Role,
		"created_at": user.CreatedAt,
		"updated_at": user.UpdatedAt,
	})
}

func (h *AuthHandler) issueToken(userID uint, role string) (string, time.Time, error) {
	cfg := config.Global.JWT
	return jwt.GenerateToken(cfg.Secret, userID, role, cfg.ExpireHours)
}
