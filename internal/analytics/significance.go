package analytics

import "time"

// Significance is 1 - distinct/total clamped to [0, 1]. Near 0 every
// occurrence is distinct; near 1 the label is dominated by repetition.
func Significance(distinct, total int64) float64 {
	if total <= 0 {
		return 0
	}
	s := 1 - float64(distinct)/float64(total)
	switch {
	case s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}

// elapsedHours is the whole number of hours between t and now.
func elapsedHours(now, t time.Time) int {
	d := now.Sub(t)
	if d < 0 {
		return 0
	}
	return int(d / time.Hour)
}
