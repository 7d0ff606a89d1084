package models

import "time"

// GroupSummary is one row of the deduplicated error group listing.
// Count is the all-time size of the group; WindowCount only counts
// members that fall inside the requested window.
type GroupSummary struct {
	ID          int64     `json:"id"`
	Count       int64     `json:"count"`
	WindowCount int64     `json:"window_count"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory"`
	LastSeen    time.Time `json:"last"`
	Log         string    `json:"log"`
}

// GroupActivity is the raw per-group recency data a store resolves for one window.
// Last and First are nil when the group has no records in the window.
type GroupActivity struct {
	ID          int64
	Size        int64
	WindowCount int64
	Last        *LogRecord
	First       *LogRecord
}

// GroupDetail is the group-detail view. First and Last are whole hours
// elapsed since the first and last occurrence, rendered for display.
type GroupDetail struct {
	ID          int64      `json:"id"`
	Category    string     `json:"category"`
	Subcategory string     `json:"subcategory"`
	Count       int64      `json:"count"`
	Size        int64      `json:"size"`
	First       string     `json:"first"`
	Last        string     `json:"last"`
	FirstSeen   *time.Time `json:"first_seen,omitempty"`
	LastSeen    *time.Time `json:"last_seen,omitempty"`
	Log         string     `json:"log"`
}
