package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/peacewatch/peacewatch/internal/errors"
	"github.com/peacewatch/peacewatch/internal/models"
)

// listAlertsHandler returns stored alerts, newest first
func (h *Handler) listAlertsHandler(w http.ResponseWriter, r *http.Request) {
	q := models.AlertQuery{Limit: 100}

	params := r.URL.Query()
	if sources, ok := params["source"]; ok {
		q.Sources = sources
	}
	if since := params.Get("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid since timestamp")
			return
		}
		q.Since = t
	}
	if limit := params.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 || n > 1000 {
			h.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		q.Limit = n
	}
	if offset := params.Get("offset"); offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil || n < 0 {
			h.writeError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		q.Offset = n
	}

	alerts, err := h.store.QueryAlerts(r.Context(), q)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to query alerts")
		return
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// getAlertHandler returns a single alert by ID
func (h *Handler) getAlertHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	alert, err := h.store.GetAlert(r.Context(), id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to get alert")
		return
	}
	if alert == nil {
		h.writeError(w, http.StatusNotFound, "alert not found")
		return
	}

	h.writeJSON(w, http.StatusOK, alert)
}

// deleteAlertHandler removes an alert (admin only)
func (h *Handler) deleteAlertHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.DeleteAlert(r.Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "alert not found")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "failed to delete alert")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
