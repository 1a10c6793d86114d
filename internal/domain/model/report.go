package model

import (
	"time"

	"github.com/Henjin888/hejin-music-platform/internal/domain/enums"
)

type Report struct {
	ID           int64              `json:"id"`
	ReporterID   int64              `json:"reporter_id"`
	MusicID      int64              `json:"music_id"`
	Reason       string             `json:"reason"`
	Status       enums.ReportStatus `json:"status"`
	AdminComment string             `json:"admin_comment,omitempty"`
	ProcessedBy  *int64             `json:"processed_by,omitempty"`
	ProcessedAt  *time.Time         `json:"processed_at,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}
