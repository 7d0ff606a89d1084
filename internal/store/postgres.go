package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/logtrends/internal/metrics"
	"github.com/kiranshivaraju/logtrends/pkg/models"
	"github.com/kiranshivaraju/logtrends/pkg/pgquery"
)

// PostgresStore implements the Store interface using pgx/v5.
// Every call borrows a pooled connection for the duration of one statement.
type PostgresStore struct {
	pool    *pgxpool.Pool
	queries pgquery.QueryBuilder
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Labels ---

func (s *PostgresStore) LabelTrends(ctx context.Context, w models.Window) (_ []*models.LabelTrend, err error) {
	defer observe("label_trends", time.Now(), &err)

	q := s.queries.LabelTrends(w)
	rows, err := s.pool.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("query label trends: %w", err)
	}
	defer rows.Close()

	trends := []*models.LabelTrend{}
	for rows.Next() {
		var t models.LabelTrend
		r := &t.Latest
		if err := rows.Scan(&r.UUID, &r.Label, &r.Category, &r.Subcategory, &r.CreateDate, &r.Log,
			&t.Total, &t.DistinctCount); err != nil {
			return nil, fmt.Errorf("scan label trend: %w", err)
		}
		t.Label = r.Label
		trends = append(trends, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate label trends: %w", err)
	}
	return trends, nil
}

func (s *PostgresStore) LabelBuckets(ctx context.Context, labels []string, w models.Window) (_ []models.LabelBucketRow, err error) {
	defer observe("label_buckets", time.Now(), &err)

	q := s.queries.LabelPivot(labels, w)
	rows, err := s.pool.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("query label buckets: %w", err)
	}
	defer rows.Close()

	result := []models.LabelBucketRow{}
	for rows.Next() {
		row := models.LabelBucketRow{Counts: make([]int64, len(labels))}
		dest := make([]any, 0, len(labels)+1)
		dest = append(dest, &row.Start)
		for i := range row.Counts {
			dest = append(dest, &row.Counts[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan label bucket: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate label buckets: %w", err)
	}
	return result, nil
}

// --- Groups ---

func (s *PostgresStore) CountActiveGroups(ctx context.Context, w models.Window) (_ int, err error) {
	defer observe("count_active_groups", time.Now(), &err)

	var total int
	q := s.queries.CountActiveGroups(w)
	if err := s.pool.QueryRow(ctx, q.SQL, q.Args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count active groups: %w", err)
	}
	return total, nil
}

func (s *PostgresStore) ListActiveGroups(ctx context.Context, w models.Window, page Page) (_ []*models.GroupSummary, err error) {
	defer observe("list_active_groups", time.Now(), &err)

	q := s.queries.ActiveGroupsPage(w, page.Offset(), page.Limit)
	rows, err := s.pool.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("list active groups: %w", err)
	}
	defer rows.Close()

	groups := []*models.GroupSummary{}
	for rows.Next() {
		var g models.GroupSummary
		if err := rows.Scan(&g.ID, &g.Count, &g.WindowCount,
			&g.Category, &g.Subcategory, &g.LastSeen, &g.Log); err != nil {
			return nil, fmt.Errorf("scan group summary: %w", err)
		}
		groups = append(groups, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate active groups: %w", err)
	}
	return groups, nil
}

func (s *PostgresStore) GetGroupActivity(ctx context.Context, id int64, w models.Window) (_ *models.GroupActivity, err error) {
	defer observe("group_activity", time.Now(), &err)

	var (
		a              models.GroupActivity
		newest, oldest nullRecord
	)
	q := s.queries.GroupActivity(id, w)
	dest := append([]any{&a.ID, &a.Size, &a.WindowCount}, newest.targets()...)
	dest = append(dest, oldest.targets()...)

	err = s.pool.QueryRow(ctx, q.SQL, q.Args...).Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get group activity: %w", err)
	}
	a.Last = newest.record()
	a.First = oldest.record()
	return &a, nil
}

func (s *PostgresStore) CountGroupLogs(ctx context.Context, id int64, w models.Window) (_ int, err error) {
	defer observe("count_group_logs", time.Now(), &err)

	var total int
	q := s.queries.CountGroupLogs(id, w)
	if err := s.pool.QueryRow(ctx, q.SQL, q.Args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count group logs: %w", err)
	}
	return total, nil
}

func (s *PostgresStore) ListGroupLogs(ctx context.Context, id int64, w models.Window, page Page) (_ []*models.LogRecord, err error) {
	defer observe("list_group_logs", time.Now(), &err)

	q := s.queries.GroupLogs(id, w, page.Offset(), page.Limit)
	rows, err := s.pool.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("list group logs: %w", err)
	}
	defer rows.Close()

	records := []*models.LogRecord{}
	for rows.Next() {
		var r models.LogRecord
		if err := rows.Scan(&r.UUID, &r.Label, &r.Category, &r.Subcategory, &r.CreateDate, &r.Log); err != nil {
			return nil, fmt.Errorf("scan log record: %w", err)
		}
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group logs: %w", err)
	}
	return records, nil
}

// --- Histograms ---

func (s *PostgresStore) BucketCounts(ctx context.Context, groupID *int64, w models.Window) (_ []models.BucketCount, err error) {
	defer observe("bucket_counts", time.Now(), &err)

	q := s.queries.BucketCounts(groupID, w)
	rows, err := s.pool.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("query bucket counts: %w", err)
	}
	defer rows.Close()

	buckets := []models.BucketCount{}
	for rows.Next() {
		var b models.BucketCount
		if err := rows.Scan(&b.Start, &b.Count); err != nil {
			return nil, fmt.Errorf("scan bucket count: %w", err)
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bucket counts: %w", err)
	}
	return buckets, nil
}

// nullRecord scans a LogRecord that may be absent from a LEFT JOIN.
type nullRecord struct {
	uuid        *uuid.UUID
	label       *string
	category    *string
	subcategory *string
	createDate  *time.Time
	log         *string
}

func (n *nullRecord) targets() []any {
	return []any{&n.uuid, &n.label, &n.category, &n.subcategory, &n.createDate, &n.log}
}

func (n *nullRecord) record() *models.LogRecord {
	if n.uuid == nil || n.createDate == nil {
		return nil
	}
	return &models.LogRecord{
		UUID:        *n.uuid,
		Label:       deref(n.label),
		Category:    deref(n.category),
		Subcategory: deref(n.subcategory),
		CreateDate:  *n.createDate,
		Log:         deref(n.log),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func observe(query string, start time.Time, err *error) {
	metrics.ObserveQuery(query, time.Since(start), *err)
}
