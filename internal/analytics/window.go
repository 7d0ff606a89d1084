package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/kiranshivaraju/logtrends/internal/store"
	"github.com/kiranshivaraju/logtrends/pkg/models"
	"github.com/kiranshivaraju/logtrends/pkg/pgquery"
)

// MaxPageLimit caps the page size of every paginated listing.
const MaxPageLimit = 100

// Labels is the fixed label set. The pivot histogram always carries one
// series per label, in this order, whether or not the window has data for it.
var Labels = []string{
	"DATA_IMPORT",
	"DATA_NOT_FOUND",
	"DATA_QUERY",
	"EXECUTION_EXCEPTION",
	"EXECUTION_EXTERNAL_SERVICE",
	"EXECUTION_TIMEOUT",
	"EXECUTION_WRONG_STATE",
	"TRANSPORT",
}

// NewWindow returns the window of the given length in hours ending at now.
// maxHours <= 0 disables the upper bound.
func NewWindow(hours float64, now time.Time, maxHours float64) (models.Window, error) {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours <= 0 {
		return models.Window{}, fmt.Errorf("%w: hours must be a positive number, got %v", ErrInvalidWindow, hours)
	}
	if maxHours > 0 && hours > maxHours {
		return models.Window{}, fmt.Errorf("%w: hours must not exceed %v, got %v", ErrInvalidWindow, maxHours, hours)
	}
	now = now.UTC()
	return models.Window{
		From: now.Add(-time.Duration(hours * float64(time.Hour))),
		To:   now,
	}, nil
}

// BucketAxis returns the start of every bucket covering w: generated forward
// from the window start aligned down to the bucket grid, floor(hours*2)+1 entries.
func BucketAxis(w models.Window) []time.Time {
	start := alignToBucket(w.From)
	n := int(w.Duration()/pgquery.BucketWidth) + 1
	axis := make([]time.Time, n)
	for i := range axis {
		axis[i] = start.Add(time.Duration(i) * pgquery.BucketWidth)
	}
	return axis
}

func alignToBucket(t time.Time) time.Time {
	offset := t.Sub(pgquery.BucketOrigin) % pgquery.BucketWidth
	if offset < 0 {
		offset += pgquery.BucketWidth
	}
	return t.Add(-offset).UTC()
}

func validatePage(p store.Page) error {
	if p.Number < 1 {
		return fmt.Errorf("%w: page must be >= 1, got %d", ErrInvalidPage, p.Number)
	}
	if p.Limit < 1 || p.Limit > MaxPageLimit {
		return fmt.Errorf("%w: limit must be between 1 and %d, got %d", ErrInvalidPage, MaxPageLimit, p.Limit)
	}
	if p.Number-1 > math.MaxInt/p.Limit {
		return fmt.Errorf("%w: page %d is out of range", ErrInvalidPage, p.Number)
	}
	return nil
}
