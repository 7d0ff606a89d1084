package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kiranshivaraju/logtrends/internal/analytics"
	"github.com/kiranshivaraju/logtrends/internal/api/response"
	"github.com/kiranshivaraju/logtrends/internal/store"
	"github.com/kiranshivaraju/logtrends/pkg/models"
)

const defaultPageLimit = 20

// Analytics defines the queries the handlers depend on.
type Analytics interface {
	TrendingLabels(ctx context.Context, hours float64) ([]models.TrendingLabel, error)
	ErrorGroups(ctx context.Context, hours float64, page store.Page) (*analytics.GroupPage, error)
	LabelHistogram(ctx context.Context, hours float64) (*models.LabelHistogram, error)
	Histogram(ctx context.Context, hours float64) (*models.Histogram, error)
	GroupDetail(ctx context.Context, hours float64, id int64) (*models.GroupDetail, error)
	GroupLogs(ctx context.Context, hours float64, id int64, page store.Page) (*analytics.LogPage, error)
	GroupHistogram(ctx context.Context, hours float64, id int64) (*models.Histogram, error)
}

var _ Analytics = (*analytics.Service)(nil)

// errInvalidParam carries a client-facing validation message.
type errInvalidParam struct {
	msg string
}

func (e errInvalidParam) Error() string { return e.msg }

func parseHours(r *http.Request) (float64, error) {
	v := r.URL.Query().Get("hours")
	if v == "" {
		return 0, errInvalidParam{"hours is required"}
	}
	hours, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errInvalidParam{"hours must be a number"}
	}
	return hours, nil
}

// parsePage reads page and limit, defaulting to the first page of 20.
// Range checks happen in the analytics service.
func parsePage(r *http.Request) (store.Page, error) {
	page := store.Page{Number: 1, Limit: defaultPageLimit}
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return page, errInvalidParam{"page must be an integer"}
		}
		page.Number = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return page, errInvalidParam{"limit must be an integer"}
		}
		page.Limit = n
	}
	return page, nil
}

func parseGroupID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errInvalidParam{"id must be an integer"}
	}
	return id, nil
}

// writeError maps service errors onto the response envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var invalid errInvalidParam
	switch {
	case errors.As(err, &invalid):
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", invalid.msg, nil)
	case errors.Is(err, analytics.ErrInvalidWindow), errors.Is(err, analytics.ErrInvalidPage):
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	case errors.Is(err, store.ErrNotFound):
		response.Error(w, http.StatusNotFound, "GROUP_NOT_FOUND", "Group not found", nil)
	default:
		slog.Error("analytics request failed", "error", err, "path", r.URL.Path)
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}
