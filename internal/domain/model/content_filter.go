package model

import (
	"time"

	"github.com/Henjin888/hejin-music-platform/internal/domain/enums"
)

type ContentFilter struct {
	ID        int64              `json:"id"`
	Keyword   string             `json:"keyword"`
	Type      enums.FilterType   `json:"filter_type"`
	Action    enums.FilterAction `json:"action"`
	IsActive  bool               `json:"is_active"`
	CreatedBy int64              `json:"created_by"`
	CreatedAt time.Time          `json:"created_at"`
}
