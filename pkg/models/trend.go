package models

import "time"

// LabelTrend is the raw per-label aggregate a store returns: the most recent
// record of the label plus two independently evaluated counts.
type LabelTrend struct {
	Label         string
	Total         int64
	DistinctCount int64
	Latest        LogRecord
}

// TrendingLabel is one row of the trending-labels view.
type TrendingLabel struct {
	Label        string    `json:"label"`
	Count        int64     `json:"count"`
	Significance float64   `json:"significance"`
	Category     string    `json:"category"`
	Subcategory  string    `json:"subcategory"`
	LastSeen     time.Time `json:"last"`
	Log          string    `json:"log"`
}
