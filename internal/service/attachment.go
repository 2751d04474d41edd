package service

import (
	"fmt"

	"github.com/bimakw/pmo/internal/apperr"
	"github.com/bimakw/pmo/internal/model"
	"github.com/bimakw/pmo/internal/store"
	"gorm.io/gorm"
)

// AttachmentService records attachment metadata. The storage path comes
// from the storage layer and is stored verbatim, never interpreted.
type AttachmentService struct {
	store *store.Store
}

func NewAttachmentService(st *store.Store) *AttachmentService {
	return &AttachmentService{store: st}
}

type CreateAttachmentInput struct {
	TaskID           uint
	UploadedBy       uint
	Filename         string
	OriginalFilename string
	ContentType      string
	SizeBytes        int64
	StoragePath      string
}

func (s *AttachmentService) Create(actorID uint, in CreateAttachmentInput) (*model.Attachment, error) {
	if in.Filename == "" || in.StoragePath == "" {
		return nil, apperr.Validation("attachment", "文件名和存储路径不能为空")
	}
	if in.SizeBytes < 0 {
		return nil, apperr.Validation("attachment", "文件大小不能为负数")
	}

	attachment := &model.Attachment{
		TaskID:           in.TaskID,
		UploadedBy:       in.UploadedBy,
		Filename:         in.Filename,
		OriginalFilename: in.OriginalFilename,
		ContentType:      in.ContentType,
		SizeBytes:        in.SizeBytes,
		StoragePath:      in.StoragePath,
	}
	err := s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var task model.Task
		if err := tx.First(&task, in.TaskID).Error; err != nil {
			return apperr.NotFound("task", in.TaskID, fmt.Sprintf("任务不存在: id=%d", in.TaskID))
		}
		var uploader model.User
		if err := tx.First(&uploader, in.UploadedBy).Error; err != nil {
			return apperr.NotFound("user", in.UploadedBy, fmt.Sprintf("用户不存在: id=%d", in.UploadedBy))
		}
		if err := tx.Create(attachment).Error; err != nil {
			return err
		}
		rec.Record(&actorID, &task.ProjectID, model.ActionCreated, "attachment", attachment.ID,
			model.JSONMap{"task_id": in.TaskID, "filename": in.OriginalFilename, "size_bytes": in.SizeBytes})
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return attachment, nil
}

func (s *AttachmentService) Delete(actorID, id uint) error {
	return s.store.Exec(store.MutationFunc(func(tx *gorm.DB, rec *store.Recorder) error {
		var attachment model.Attachment
		if err := tx.First(&attachment, id).Error; err != nil {
			return apperr.NotFound("attachment", id, fmt.Sprintf("附件不存在: id=%d", id))
		}
		var task model.Task
		if err := tx.First(&task, attachment.TaskID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Attachment{}, id).Error; err != nil {
			return err
		}
		rec.Record(&actorID, &task.ProjectID, model.ActionDeleted, "attachment", id,
			model.JSONMap{"task_id": attachment.TaskID, "filename": attachment.OriginalFilename})
		return nil
	}))
}

func (s *AttachmentService) GetByID(id uint) (*model.Attachment, error) {
	var attachment model.Attachment
	if err := s.store.DB().Preload("Uploader").First(&attachment, id).Error; err != nil {
		return nil, apperr.NotFound("attachment", id, fmt.Sprintf("附件不存在: id=%d", id))
	}
	return &attachment, nil
}

func (s *AttachmentService) ListByTask(taskID uint) ([]model.Attachment, error) {
	var attachments []model.Attachment
	if err := s.store.DB().Preload("Uploader").Where("task_id = ?", taskID).Order("id").Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}
