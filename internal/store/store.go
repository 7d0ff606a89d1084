package store

import (
	"context"
	"errors"

	"github.com/kiranshivaraju/logtrends/pkg/models"
)

var ErrNotFound = errors.New("resource not found")

// Store is the read-only data access interface over the logs and
// unique_errors tables. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	LabelTrends(ctx context.Context, w models.Window) ([]*models.LabelTrend, error)
	LabelBuckets(ctx context.Context, labels []string, w models.Window) ([]models.LabelBucketRow, error)

	CountActiveGroups(ctx context.Context, w models.Window) (int, error)
	ListActiveGroups(ctx context.Context, w models.Window, page Page) ([]*models.GroupSummary, error)
	GetGroupActivity(ctx context.Context, id int64, w models.Window) (*models.GroupActivity, error)
	CountGroupLogs(ctx context.Context, id int64, w models.Window) (int, error)
	ListGroupLogs(ctx context.Context, id int64, w models.Window, page Page) ([]*models.LogRecord, error)

	// BucketCounts returns non-empty 30-minute buckets in ascending order.
	// A nil groupID counts every log record.
	BucketCounts(ctx context.Context, groupID *int64, w models.Window) ([]models.BucketCount, error)
}

// Page is a 1-based offset pagination request.
type Page struct {
	Number int
	Limit  int
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	if p.Number <= 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit
}
