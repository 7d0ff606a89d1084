// Package models contains the data models shared across the logtrends codebase.
package models

import (
	"time"

	"github.com/google/uuid"
)

// LogRecord is one raw, append-only error log event.
type LogRecord struct {
	UUID        uuid.UUID `db:"uuid"        json:"uuid"`
	Label       string    `db:"label"       json:"label"`
	Category    string    `db:"category"    json:"category"`
	Subcategory string    `db:"subcategory" json:"subcategory"`
	CreateDate  time.Time `db:"create_date" json:"create_date"`
	Log         string    `db:"log"         json:"log"`
}

// Window is the half-open time range (From, To] every query filters on.
// To is the reference "now" of a request.
type Window struct {
	From time.Time
	To   time.Time
}

// Duration returns the length of the window.
func (w Window) Duration() time.Duration {
	return w.To.Sub(w.From)
}
