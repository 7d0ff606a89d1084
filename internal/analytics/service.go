// Package analytics turns raw store aggregates into the trending, grouping
// and histogram views served by the API.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/kiranshivaraju/logtrends/internal/config"
	"github.com/kiranshivaraju/logtrends/internal/store"
	"github.com/kiranshivaraju/logtrends/pkg/models"
	"github.com/kiranshivaraju/logtrends/pkg/plural"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/kiranshivaraju/logtrends/internal/analytics")

// GroupPage is one page of the active group listing. Total counts every
// active group in the window, independent of the page.
type GroupPage struct {
	Total  int                    `json:"total"`
	Groups []*models.GroupSummary `json:"groups"`
}

// LogPage is one page of a group's raw records.
type LogPage struct {
	Total   int                 `json:"total"`
	Records []*models.LogRecord `json:"records"`
}

// Service answers every analytics query relative to a reference "now".
type Service struct {
	store    store.Store
	now      func() time.Time
	locale   plural.Locale
	maxHours float64
	labels   []string
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the source of the reference time.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithReferenceTime pins the reference time for every request.
func WithReferenceTime(t time.Time) Option {
	return WithClock(func() time.Time { return t })
}

func WithLocale(l plural.Locale) Option {
	return func(s *Service) { s.locale = l }
}

// WithMaxHours bounds the window length. Zero or less means unbounded.
func WithMaxHours(h float64) Option {
	return func(s *Service) { s.maxHours = h }
}

// NewService creates a new Service.
func NewService(st store.Store, opts ...Option) *Service {
	locale, _ := plural.Lookup(plural.DefaultLocale)
	s := &Service{
		store:    st,
		now:      time.Now,
		locale:   locale,
		maxHours: 720,
		labels:   Labels,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OptionsFromConfig translates the analytics configuration into Service options.
func OptionsFromConfig(cfg config.AnalyticsConfig) ([]Option, error) {
	locale, ok := plural.Lookup(cfg.Locale)
	if !ok {
		return nil, fmt.Errorf("unknown locale %q", cfg.Locale)
	}
	opts := []Option{WithLocale(locale), WithMaxHours(cfg.MaxHours)}
	if cfg.ReferenceTime != nil {
		opts = append(opts, WithReferenceTime(*cfg.ReferenceTime))
	}
	return opts, nil
}

// Window resolves the window of the given length ending at the reference time.
func (s *Service) Window(hours float64) (models.Window, error) {
	return NewWindow(hours, s.now(), s.maxHours)
}

// TrendingLabels returns one entry per label seen in the window, most recent first.
func (s *Service) TrendingLabels(ctx context.Context, hours float64) (_ []models.TrendingLabel, err error) {
	ctx, span := s.startSpan(ctx, "analytics.TrendingLabels", hours)
	defer func() { endSpan(span, err) }()

	w, err := s.Window(hours)
	if err != nil {
		return nil, err
	}

	trends, err := s.store.LabelTrends(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("loading label trends: %w", err)
	}

	result := make([]models.TrendingLabel, 0, len(trends))
	for _, t := range trends {
		result = append(result, models.TrendingLabel{
			Label:        t.Label,
			Count:        t.Total,
			Significance: Significance(t.DistinctCount, t.Total),
			Category:     t.Latest.Category,
			Subcategory:  t.Latest.Subcategory,
			LastSeen:     t.Latest.CreateDate.UTC(),
			Log:          t.Latest.Log,
		})
	}
	span.SetAttributes(attribute.Int("labels", len(result)))
	return result, nil
}

// ErrorGroups pages through the groups with at least one record in the window.
func (s *Service) ErrorGroups(ctx context.Context, hours float64, page store.Page) (_ *GroupPage, err error) {
	ctx, span := s.startSpan(ctx, "analytics.ErrorGroups", hours)
	defer func() { endSpan(span, err) }()

	if err := validatePage(page); err != nil {
		return nil, err
	}
	w, err := s.Window(hours)
	if err != nil {
		return nil, err
	}

	total, err := s.store.CountActiveGroups(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("counting active groups: %w", err)
	}
	groups, err := s.store.ListActiveGroups(ctx, w, page)
	if err != nil {
		return nil, fmt.Errorf("listing active groups: %w", err)
	}
	for _, g := range groups {
		g.LastSeen = g.LastSeen.UTC()
	}
	return &GroupPage{Total: total, Groups: groups}, nil
}

// LabelHistogram returns a gap-free series per label over the window.
func (s *Service) LabelHistogram(ctx context.Context, hours float64) (_ *models.LabelHistogram, err error) {
	ctx, span := s.startSpan(ctx, "analytics.LabelHistogram", hours)
	defer func() { endSpan(span, err) }()

	w, err := s.Window(hours)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.LabelBuckets(ctx, s.labels, w)
	if err != nil {
		return nil, fmt.Errorf("loading label buckets: %w", err)
	}

	axis := BucketAxis(w)
	return &models.LabelHistogram{X: axis, Y: fillPivot(axis, s.labels, rows)}, nil
}

// Histogram returns the gap-free series of every log record in the window.
func (s *Service) Histogram(ctx context.Context, hours float64) (_ *models.Histogram, err error) {
	ctx, span := s.startSpan(ctx, "analytics.Histogram", hours)
	defer func() { endSpan(span, err) }()

	return s.histogram(ctx, nil, hours)
}

// GroupHistogram returns the gap-free series of one group's records. An
// unknown group yields an all-zero series.
func (s *Service) GroupHistogram(ctx context.Context, hours float64, id int64) (_ *models.Histogram, err error) {
	ctx, span := s.startSpan(ctx, "analytics.GroupHistogram", hours, attribute.Int64("group.id", id))
	defer func() { endSpan(span, err) }()

	return s.histogram(ctx, &id, hours)
}

func (s *Service) histogram(ctx context.Context, groupID *int64, hours float64) (*models.Histogram, error) {
	w, err := s.Window(hours)
	if err != nil {
		return nil, err
	}

	counts, err := s.store.BucketCounts(ctx, groupID, w)
	if err != nil {
		return nil, fmt.Errorf("loading bucket counts: %w", err)
	}

	axis := BucketAxis(w)
	return &models.Histogram{X: axis, Y: fillSeries(axis, counts)}, nil
}

// GroupDetail describes one group's activity in the window. It returns
// store.ErrNotFound when the group does not exist; a group without records
// in the window comes back with a zero count and empty recency fields.
func (s *Service) GroupDetail(ctx context.Context, hours float64, id int64) (_ *models.GroupDetail, err error) {
	ctx, span := s.startSpan(ctx, "analytics.GroupDetail", hours, attribute.Int64("group.id", id))
	defer func() { endSpan(span, err) }()

	w, err := s.Window(hours)
	if err != nil {
		return nil, err
	}

	a, err := s.store.GetGroupActivity(ctx, id, w)
	if err != nil {
		return nil, fmt.Errorf("loading group %d: %w", id, err)
	}

	d := &models.GroupDetail{ID: a.ID, Count: a.WindowCount, Size: a.Size}
	if a.Last != nil {
		seen := a.Last.CreateDate.UTC()
		d.Category = a.Last.Category
		d.Subcategory = a.Last.Subcategory
		d.Log = a.Last.Log
		d.LastSeen = &seen
		d.Last = s.locale.FormatHours(elapsedHours(w.To, seen))
	}
	if a.First != nil {
		seen := a.First.CreateDate.UTC()
		d.FirstSeen = &seen
		d.First = s.locale.FormatHours(elapsedHours(w.To, seen))
	}
	return d, nil
}

// GroupLogs pages through one group's records in the window, newest first.
func (s *Service) GroupLogs(ctx context.Context, hours float64, id int64, page store.Page) (_ *LogPage, err error) {
	ctx, span := s.startSpan(ctx, "analytics.GroupLogs", hours, attribute.Int64("group.id", id))
	defer func() { endSpan(span, err) }()

	if err := validatePage(page); err != nil {
		return nil, err
	}
	w, err := s.Window(hours)
	if err != nil {
		return nil, err
	}

	total, err := s.store.CountGroupLogs(ctx, id, w)
	if err != nil {
		return nil, fmt.Errorf("counting logs of group %d: %w", id, err)
	}
	records, err := s.store.ListGroupLogs(ctx, id, w, page)
	if err != nil {
		return nil, fmt.Errorf("listing logs of group %d: %w", id, err)
	}
	for _, r := range records {
		r.CreateDate = r.CreateDate.UTC()
	}
	return &LogPage{Total: total, Records: records}, nil
}

func (s *Service) startSpan(ctx context.Context, name string, hours float64, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.Float64("window.hours", hours))
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
