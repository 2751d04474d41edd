package handler

import (
	"time"

	"github.com/bimakw/pmo/internal/middleware"
	"github.com/bimakw/pmo/internal/service"
	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	taskService   *service.TaskService
	ledgerService *service.TimeLedgerService
}

func NewTaskHandler(taskService *service.TaskService, ledgerService *service.TimeLedgerService) *TaskHandler {
	return &TaskHandler{taskService: taskService, ledgerService: ledgerService}
}

// POST /tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req struct {
		ProjectID      uint       `json:"project_id" binding:"required"`
		MilestoneID    *uint      `json:"milestone_id"`
		Title          string     `json:"title" binding:"required,max=256"`
		Description    string     `json:"description" binding:"max=10000"`
		Status         string     `json:"status" binding:"omitempty,oneof=todo inprogress review done blocked"`
		Priority       string     `json:"priority" binding:"omitempty,oneof=low medium high critical"`
		AssigneeID     *uint      `json:"assignee_id"`
		DueDate        *time.Time `json:"due_date"`
		EstimatedHours *float64   `json:"estimated_hours"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "参数校验失败: "+err.Error())
		return
	}

	task, err := h.taskService.Create(middleware.GetCurrentUserID(c), service.CreateTaskInput{
		ProjectID:      req.ProjectID,
		MilestoneID:    req.MilestoneID,
		Title:          req.Title,
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		AssigneeID:     req.AssigneeID,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, task)
}

// GET /projects/:id/tasks
func (h *TaskHandler) ListByProject(c *gin.Context) {
	page, pageSize := parsePage(c)

	var assigneeID, milestoneID *uint
	if s := c.Query("assignee_id"); s != "" {
		v := parseID(s)
		assigneeID = &v
	}
	if s := c.Query("milestone_id"); s != "" {
		v := parseID(s)
		milestoneID = &v
	}

	tasks, total, err := h.taskService.ListByProject(parseID(c.Param("id")), c.Query("status"), assigneeID, milestoneID, page, pageSize)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	SuccessPaged(c, tasks, total, page, pageSize)
}

// GET /tasks/mine
func (h *TaskHandler) ListMine(c *gin.Context) {
	tasks, err := h.taskService.ListByAssignee(middleware.GetCurrentUserID(c), c.Query("status"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, tasks)
}

// GET /tasks/:id
func (h *TaskHandler) GetDetail(c *gin.Context) {
	task, err := h.taskService.GetByID(parseID(c.Param("id")))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, task)
}

// PUT /tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	var req struct {
		Title          *string    `json:"title" binding:"omitempty,max=256"`
		Description    *string    `json:"description" binding:"omitempty,max=10000"`
		Status         *string    `json:"status" binding:"omitempty,oneof=todo inprogress review done blocked"`
		Priority       *string    `json:"priority" binding:"omitempty,oneof=low medium high critical"`
		MilestoneID    *uint      `json:"milestone_id"`
		ClearMilestone bool       `json:"clear_milestone"`
		AssigneeID     *uint      `json:"assignee_id"`
		ClearAssignee  bool       `json:"clear_assignee"`
		DueDate        *time.Time `json:"due_date"`
		EstimatedHours *float64   `json:"estimated_hours"`
		ActualHours    *float64   `json:"actual_hours"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "参数校验失败: "+err.Error())
		return
	}

	task, err := h.taskService.Update(middleware.GetCurrentUserID(c), parseID(c.Param("id")), service.UpdateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		MilestoneID:    req.MilestoneID,
		ClearMilestone: req.ClearMilestone,
		AssigneeID:     req.AssigneeID,
		ClearAssignee:  req.ClearAssignee,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
		ActualHours:    req.ActualHours,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, task)
}

// PUT /tasks/:id/status
func (h *TaskHandler) Transition(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required,oneof=todo inprogress review done blocked"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "参数校验失败: "+err.Error())
		return
	}

	task, err := h.taskService.Transition(middleware.GetCurrentUserID(c), parseID(c.Param("id")), req.Status)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, task)
}

// PUT /tasks/:id/assignee
func (h *TaskHandler) Assign(c *gin.Context) {
	var req struct {
		AssigneeID *uint `json:"assignee_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "参数校验失败: "+err.Error())
		return
	}

	task, err := h.taskService.Assign(middleware.GetCurrentUserID(c), parseID(c.Param("id")), req.AssigneeID)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, task)
}

// DELETE /tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.taskService.Delete(middleware.GetCurrentUserID(c), parseID(c.Param("id"))); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}

// POST /tasks/:id/comments
func (h *TaskHandler) AddComment(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required,max=10000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "参数校验失败: "+err.Error())
		return
	}

	comment, err := h.taskService.AddComment(middleware.GetCurrentUserID(c), parseID(c.Param("id")), req.Content)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, comment)
}

// GET /tasks/:id/comments
func (h *TaskHandler) ListComments(c *gin.Context) {
	comments, err := h.taskService.ListComments(parseID(c.Param("id")))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, comments)
}

// DELETE /tasks/comments/:comment_id
func (h *TaskHandler) DeleteComment(c *gin.Context) {
	if err := h.taskService.DeleteComment(middleware.GetCurrentUserID(c), parseID(c.Param("comment_id"))); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}

// POST /tasks/:id/tags/:tag_id
func (h *TaskHandler) AttachTag(c *gin.Context) {
	if err := h.taskService.AttachTag(middleware.GetCurrentUserID(c), parseID(c.Param("id")), parseID(c.Param("tag_id"))); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}

// DELETE /tasks/:id/tags/:tag_id
func (h *TaskHandler) DetachTag(c *gin.Context) {
	if err := h.taskService.DetachTag(middleware.GetCurrentUserID(c), parseID(c.Param("id")), parseID(c.Param("tag_id"))); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}

// GET /tasks/:id/tags
func (h *TaskHandler) ListTags(c *gin.Context) {
	tags, err := h.taskService.ListTags(parseID(c.Param("id")))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, tags)
}
