package dto

import "time"

type SubmitReportRequest struct {
	MusicID int64  `json:"music_id"`
	Reason  string `json:"reason"`
}

type SubmitReportResponse struct {
	ReportID int64  `json:"report_id"`
	Status   string `json:"status"`
}

type ProcessReportRequest struct {
	Action  string `json:"action"`
	Comment string `json:"comment,omitempty"`
}

type ReportResponse struct {
	ID               int64      `json:"id"`
	MusicID          int64      `json:"music_id"`
	MusicTitle       string     `json:"music_title,omitempty"`
	CreatorUsername  string     `json:"creator_username,omitempty"`
	ReporterID       int64      `json:"reporter_id"`
	ReporterUsername string     `json:"reporter_username,omitempty"`
	Reason           string     `json:"reason"`
	Status           string     `json:"status"`
	AdminComment     string     `json:"admin_comment,omitempty"`
	ProcessedBy      *int64     `json:"processed_by,omitempty"`
	ProcessedAt      *time.Time `json:"processed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type ReportListResponse struct {
	Items      []ReportResponse   `json:"items"`
	Pagination PaginationResponse `json:"pagination"`
}

type BlacklistRequest struct {
	UserID int64      `json:"user_id"`
	Reason string     `json:"reason"`
	EndAt  *time.Time `json:"end_at,omitempty"`
}

type BlacklistEntryResponse struct {
	ID       int64      `json:"id"`
	UserID   int64      `json:"user_id"`
	Username string     `json:"username,omitempty"`
	Email    string     `json:"email,omitempty"`
	Reason   string     `json:"reason"`
	StartAt  time.Time  `json:"start_at"`
	EndAt    *time.Time `json:"end_at,omitempty"`
	Active   bool       `json:"active"`
}

type BlacklistListResponse struct {
	Items      []BlacklistEntryResponse `json:"items"`
	Pagination PaginationResponse       `json:"pagination"`
}

type AuditMusicRequest struct {
	Action  string `json:"action"`
	Comment string `json:"comment,omitempty"`
}

type ContentFilterRequest struct {
	Keyword    string `json:"keyword"`
	FilterType string `json:"filter_type"`
	Action     string `json:"action"`
}

type ContentFilterResponse struct {
	ID         int64     `json:"id"`
	Keyword    string    `json:"keyword"`
	FilterType string    `json:"filter_type"`
	Action     string    `json:"action"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}
