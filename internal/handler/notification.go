package handler

import (
	"github.com/bimakw/pmo/internal/middleware"
	"github.com/bimakw/pmo/internal/service"
	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// GET /notifications?unread_only=true
func (h *NotificationHandler) List(c *gin.Context) {
	page, pageSize := parsePage(c)
	unreadOnly := c.Query("unread_only") == "true"

	notifications, total, err := h.notificationService.ListByUser(middleware.GetCurrentUserID(c), unreadOnly, page, pageSize)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	SuccessPaged(c, notifications, total, page, pageSize)
}

// GET /notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notificationService.UnreadCount(middleware.GetCurrentUserID(c))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"count": count})
}

// PUT /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notificationService.MarkRead(parseID(c.Param("id")), middleware.GetCurrentUserID(c)); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}

// PUT /notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notificationService.MarkAllRead(middleware.GetCurrentUserID(c)); err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, nil)
}

// DELETE /notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	if err := h.notificationService.Delete(parseID(c.Param("id")), middleware.GetCurrentUserID(c)); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}
