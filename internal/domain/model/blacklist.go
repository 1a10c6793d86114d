package model

import "time"

// BlacklistEntry is a historical record; whether the subject is currently
// blacklisted is derived from (IsActive, EndAt, now) at read time and never
// stored.
type BlacklistEntry struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Reason    string     `json:"reason"`
	StartAt   time.Time  `json:"start_at"`
	EndAt     *time.Time `json:"end_at,omitempty"`
	IsActive  bool       `json:"is_active"`
	CreatedBy int64      `json:"created_by"`
}

func (e BlacklistEntry) CurrentlyBlacklisted(now time.Time) bool {
	if !e.IsActive {
		return false
	}
	if e.EndAt == nil {
		return true
	}
	return !now.After(*e.EndAt)
}
