package dto

import "time"

type PaginationResponse struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int64 `json:"pages"`
}

type TrackResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Genre       string    `json:"genre,omitempty"`
	CreatorID   int64     `json:"creator_id"`
	AuditStatus string    `json:"audit_status"`
	IsPublic    bool      `json:"is_public"`
	UploadedAt  time.Time `json:"uploaded_at"`
	StreamURL   string    `json:"stream_url,omitempty"`
	CoverURL    string    `json:"cover_url,omitempty"`
}

type TrackListResponse struct {
	Items      []TrackResponse    `json:"items"`
	Pagination PaginationResponse `json:"pagination"`
}
