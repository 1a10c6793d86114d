package model

import (
	"time"

	"github.com/Henjin888/hejin-music-platform/internal/domain/enums"
)

type Music struct {
	ID           int64             `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	ObjectKey    string            `json:"-"`
	CoverKey     string            `json:"-"`
	Genre        string            `json:"genre,omitempty"`
	CreatorID    int64             `json:"creator_id"`
	AuditStatus  enums.AuditStatus `json:"audit_status"`
	AuditComment string            `json:"audit_comment,omitempty"`
	IsPublic     bool              `json:"is_public"`
	UploadedAt   time.Time         `json:"uploaded_at"`
}
