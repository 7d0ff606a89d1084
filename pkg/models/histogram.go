package models

import "time"

// BucketCount is the number of events aggregated into one time bucket.
type BucketCount struct {
	Start time.Time
	Count int64
}

// LabelBucketRow is one pivoted bucket: Counts[i] belongs to the i-th label
// of the label set the query was built with.
type LabelBucketRow struct {
	Start  time.Time
	Counts []int64
}

// Histogram is a gap-free single series. X holds 30-minute bucket starts,
// beginning at the window start aligned down to the grid, one per half hour
// of window length plus one. When the window length is not a multiple of 30
// minutes the axis can end one bucket before the one containing "now"; events
// from that trailing bucket are counted in the last point, so Y always sums
// to the number of events in the window.
type Histogram struct {
	X []time.Time `json:"x"`
	Y []int64     `json:"y"`
}

// LabelHistogram is a gap-free series per label, sharing the X axis. The axis
// and the trailing-bucket folding follow Histogram.
type LabelHistogram struct {
	X []time.Time        `json:"x"`
	Y map[string][]int64 `json:"y"`
}
