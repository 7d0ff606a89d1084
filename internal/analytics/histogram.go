package analytics

import (
	"time"

	"github.com/kiranshivaraju/logtrends/pkg/models"
	"github.com/kiranshivaraju/logtrends/pkg/pgquery"
)

// fillSeries overlays sparse bucket counts onto the full axis, leaving zeros
// in the gaps.
func fillSeries(axis []time.Time, counts []models.BucketCount) []int64 {
	y := make([]int64, len(axis))
	for _, c := range counts {
		y[bucketIndex(axis, c.Start)] += c.Count
	}
	return y
}

// fillPivot does the same per label. rows carry counts in labels order.
func fillPivot(axis []time.Time, labels []string, rows []models.LabelBucketRow) map[string][]int64 {
	y := make(map[string][]int64, len(labels))
	for _, label := range labels {
		y[label] = make([]int64, len(axis))
	}
	for _, row := range rows {
		i := bucketIndex(axis, row.Start)
		for j, label := range labels {
			if j < len(row.Counts) {
				y[label][i] += row.Counts[j]
			}
		}
	}
	return y
}

// bucketIndex maps a bucket start onto the axis. A window that is not a
// multiple of the bucket width ends in a partial bucket; anything past the
// last generated boundary is folded into it.
func bucketIndex(axis []time.Time, start time.Time) int {
	i := int(start.Sub(axis[0]) / pgquery.BucketWidth)
	if i < 0 {
		return 0
	}
	if i >= len(axis) {
		return len(axis) - 1
	}
	return i
}
