package handler

import (
	"net/http"

	"github.com/kiranshivaraju/logtrends/internal/api/response"
)

// NewTrendingLabelsHandler returns an http.HandlerFunc for GET /api/v1/subcategories.
func NewTrendingLabelsHandler(svc Analytics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hours, err := parseHours(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		labels, err := svc.TrendingLabels(r.Context(), hours)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, labels)
	}
}

// NewLabelHistogramHandler returns an http.HandlerFunc for GET /api/v1/groups/chart.
func NewLabelHistogramHandler(svc Analytics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hours, err := parseHours(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		chart, err := svc.LabelHistogram(r.Context(), hours)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, chart)
	}
}

// NewHistogramHandler returns an http.HandlerFunc for GET /api/v1/chart.
func NewHistogramHandler(svc Analytics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hours, err := parseHours(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		chart, err := svc.Histogram(r.Context(), hours)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, chart)
	}
}
