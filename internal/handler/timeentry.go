package handler

import (
	"time"

	"github.com/bimakw/pmo/internal/middleware"
	"github.com/bimakw/pmo/internal/service"
	"github.com/gin-gonic/gin"
)

type TimeEntryHandler struct {
	ledgerService *service.TimeLedgerService
}

func NewTimeEntryHandler(ledgerService *service.TimeLedgerService) *TimeEntryHandler {
	return &TimeEntryHandler{ledgerService: ledgerService}
}

// POST /tasks/:id/time-entries
func (h *TimeEntryHandler) Record(c *gin.Context) {
	var req struct {
		Hours       float64 `json:"hours" binding:"required"`
		Date        string  `json:"date" binding:"required"`
		Description string  `json:"description" binding:"max=512"`
		UserID      *uint   `json:"user_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "参数校验失败: "+err.Error())
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		BadRequest(c, 40001, "日期格式必须为 YYYY-MM-DD")
		return
	}

	actorID := middleware.GetCurrentUserID(c)
	userID := actorID
	if req.UserID != nil {
		// Logging hours for someone else is a manager/admin action.
		if *req.UserID != actorID && !middleware.IsAdmin(c) && middleware.GetCurrentUserRole(c) != "manager" {
			Forbidden(c, 40301, "只能为本人登记工时")
			return
		}
		userID = *req.UserID
	}

	entry, err := h.ledgerService.Record(actorID, parseID(c.Param("id")), userID, req.Hours, date, req.Description)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, entry)
}

// GET /tasks/:id/time-entries
func (h *TimeEntryHandler) ListByTask(c *gin.Context) {
	taskID := parseID(c.Param("id"))
	entries, err := h.ledgerService.ListByTask(taskID)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	total, err := h.ledgerService.TaskTotal(taskID)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"list": entries, "total_hours": total})
}

// GET /time-entries/mine?from=2026-01-01&to=2026-01-31
func (h *TimeEntryHandler) ListMine(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	from, to, err := parseDateRange(c)
	if err != nil {
		BadRequest(c, 40001, "日期格式必须为 YYYY-MM-DD")
		return
	}

	entries, err := h.ledgerService.ListByUser(userID, from, to)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	total, err := h.ledgerService.UserTotal(userID, from, to)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"list": entries, "total_hours": total})
}

// DELETE /time-entries/:id
func (h *TimeEntryHandler) Delete(c *gin.Context) {
	if err := h.ledgerService.Delete(middleware.GetCurrentUserID(c), parseID(c.Param("id"))); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}

func parseDateRange(c *gin.Context) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if s := c.Query("from"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, nil, err
		}
		from = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, nil, err
		}
		to = &t
	}
	return from, to, nil
}
