package model

import (
	"fmt"
	"strings"
	"time"
)

// Attachment records metadata only; the file itself lives behind an opaque
// storage path owned by the storage layer.
type Attachment struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	TaskID           uint      `gorm:"not null;index:idx_attachment_task" json:"task_id"`
	UploadedBy       uint      `gorm:"not null;index:idx_attachment_uploader" json:"uploaded_by"`
	Filename         string    `gorm:"type:varchar(256);not null" json:"filename"`
	OriginalFilename string    `gorm:"type:varchar(256);not null" json:"original_filename"`
	ContentType      string    `gorm:"type:varchar(128)" json:"content_type"`
	SizeBytes        int64     `gorm:"not null" json:"size_bytes"`
	StoragePath      string    `gorm:"type:varchar(512);not null" json:"storage_path"`
	CreatedAt        time.Time `json:"created_at"`

	Uploader *User `gorm:"foreignKey:UploadedBy" json:"uploader,omitempty"`
}

func (Attachment) TableName() string { return "attachments" }

func (a *Attachment) IsImage() bool {
	return strings.HasPrefix(a.ContentType, "image/")
}

func (a *Attachment) FormattedSize() string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case a.SizeBytes >= gb:
		return fmt.Sprintf("%.2f GB", float64(a.SizeBytes)/float64(gb))
	case a.SizeBytes >= mb:
		return fmt.Sprintf("%.2f MB", float64(a.SizeBytes)/float64(mb))
	case a.SizeBytes >= kb:
		return fmt.Sprintf("%.2f KB", float64(a.SizeBytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", a.SizeBytes)
	}
}
