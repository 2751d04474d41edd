package handler

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bimakw/pmo/internal/middleware"
	"github.com/bimakw/pmo/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxUploadBytes = 32 << 20

type AttachmentHandler struct {
	attachmentService *service.AttachmentService
	uploadDir         string
}

func NewAttachmentHandler(attachmentService *service.AttachmentService, uploadDir string) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService, uploadDir: uploadDir}
}

// POST /tasks/:id/attachments (multipart form, field "file")
func (h *AttachmentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, 40001, "缺少上传文件")
		return
	}
	if file.Size > maxUploadBytes {
		BadRequest(c, 40001, "文件大小超过 32MB 限制")
		return
	}

	stored := uuid.NewString() + filepath.Ext(file.Filename)
	storagePath := filepath.Join(h.uploadDir, stored)
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		InternalError(c, "存储目录创建失败")
		return
	}
	if err := c.SaveUploadedFile(file, storagePath); err != nil {
		InternalError(c, "文件保存失败")
		return
	}

	userID := middleware.GetCurrentUserID(c)
	attachment, err := h.attachmentService.Create(userID, service.CreateAttachmentInput{
		TaskID:           parseID(c.Param("id")),
		UploadedBy:       userID,
		Filename:         stored,
		OriginalFilename: file.Filename,
		ContentType:      file.Header.Get("Content-Type"),
		SizeBytes:        file.Size,
		StoragePath:      storagePath,
	})
	if err != nil {
		os.Remove(storagePath)
		RespondError(c, err)
		return
	}
	Success(c, attachment)
}

// GET /tasks/:id/attachments
func (h *AttachmentHandler) ListByTask(c *gin.Context) {
	attachments, err := h.attachmentService.ListByTask(parseID(c.Param("id")))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, attachments)
}

// GET /attachments/:id/download
func (h *AttachmentHandler) Download(c *gin.Context) {
	attachment, err := h.attachmentService.GetByID(parseID(c.Param("id")))
	if err != nil {
		RespondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.OriginalFilename))
	c.File(attachment.StoragePath)
}

// DELETE /attachments/:id
func (h *AttachmentHandler) Delete(c *gin.Context) {
	id := parseID(c.Param("id"))
	attachment, err := h.attachmentService.GetByID(id)
	if err != nil {
		RespondError(c, err)
		return
	}

	if err := h.attachmentService.Delete(middleware.GetCurrentUserID(c), id); err != nil {
		RespondError(c, err)
		return
	}
	os.Remove(attachment.StoragePath)
	Success(c, nil)
}
