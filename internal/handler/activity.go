package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/bimakw/pmo/internal/middleware"
	"github.com/bimakw/pmo/internal/service"
	"github.com/bimakw/pmo/internal/sse"
	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	activityService *service.ActivityService
	projectService  *service.ProjectService
	hub             *sse.Hub
}

func NewActivityHandler(activityService *service.ActivityService, projectService *service.ProjectService, hub *sse.Hub) *ActivityHandler {
	return &ActivityHandler{activityService: activityService, projectService: projectService, hub: hub}
}

// GET /projects/:id/activity?limit=50&before=<event_id>
func (h *ActivityHandler) ListByProject(c *gin.Context) {
	projectID := parseID(c.Param("id"))

	if !middleware.IsAdmin(c) && !h.projectService.IsMember(projectID, middleware.GetCurrentUserID(c)) {
		Forbidden(c, 40302, "非项目成员，无权查看")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	var before *uint
	if s := c.Query("before"); s != "" {
		v := parseID(s)
		before = &v
	}

	events, err := h.activityService.List(&projectID, limit, before)
	if err != nil {
		RespondError(c, err)
		return
	}

	var nextCursor *uint
	if len(events) > 0 {
		last := events[len(events)-1].ID
		nextCursor = &last
	}
	Success(c, gin.H{"list": events, "next_cursor": nextCursor})
}

// GET /activity/entity/:type/:id
func (h *ActivityHandler) ListByEntity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	events, err := h.activityService.ListByEntity(c.Param("type"), parseID(c.Param("id")), limit)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, events)
}

// GET /projects/:id/activity/stream
func (h *ActivityHandler) Stream(c *gin.Context) {
	projectID := parseID(c.Param("id"))

	if !middleware.IsAdmin(c) && !h.projectService.IsMember(projectID, middleware.GetCurrentUserID(c)) {
		Forbidden(c, 40302, "非项目成员，无权查看")
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		InternalError(c, "streaming not supported")
		return
	}

	// Replay what the client missed since it last saw an event.
	lastEventID := sse.ParseLastEventID(c.GetHeader("Last-Event-ID"))
	history, _ := h.hub.ReplayFrom(projectID, lastEventID)
	for _, ev := range history {
		writeSSE(c, ev)
	}
	if len(history) > 0 {
		flusher.Flush()
	}

	ch, unsub := h.hub.Subscribe(projectID)
	defer unsub()

	ctx := c.Request.Context()
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case ev, open := <-ch:
			if !open {
				return
			}
			writeSSE(c, ev)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprintf(c.Writer, ": heartbeat\n\n")
			flusher.Flush()
		case <-ctx.Done():
			return
		}
	}
}

func writeSSE(c *gin.Context, ev sse.Event) {
	data, _ := json.Marshal(ev.Data)
	fmt.Fprintf(c.Writer, "id: %d\nevent: %s\ndata: %s\n\n", ev.ID, ev.Type, string(data))
}
