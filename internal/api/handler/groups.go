package handler

import (
	"net/http"

	"github.com/kiranshivaraju/logtrends/internal/api/response"
)

// NewGroupsHandler returns an http.HandlerFunc for GET /api/v1/groups.
func NewGroupsHandler(svc Analytics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hours, err := parseHours(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		page, err := parsePage(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		result, err := svc.ErrorGroups(r.Context(), hours, page)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.Collection(w, result.Groups, response.NewPaginationMeta(page.Number, page.Limit, result.Total))
	}
}

// NewGroupDetailHandler returns an http.HandlerFunc for GET /api/v1/groups/{id}.
func NewGroupDetailHandler(svc Analytics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseGroupID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		hours, err := parseHours(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		detail, err := svc.GroupDetail(r.Context(), hours, id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, detail)
	}
}

// NewGroupLogsHandler returns an http.HandlerFunc for GET /api/v1/groups/{id}/errors.
func NewGroupLogsHandler(svc Analytics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseGroupID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		hours, err := parseHours(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		page, err := parsePage(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		result, err := svc.GroupLogs(r.Context(), hours, id, page)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.Collection(w, result.Records, response.NewPaginationMeta(page.Number, page.Limit, result.Total))
	}
}

// NewGroupHistogramHandler returns an http.HandlerFunc for GET /api/v1/groups/{id}/chart.
func NewGroupHistogramHandler(svc Analytics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseGroupID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		hours, err := parseHours(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		chart, err := svc.GroupHistogram(r.Context(), hours, id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, chart)
	}
}
