package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	apperrors "github.com/peacewatch/peacewatch/internal/errors"
	"github.com/peacewatch/peacewatch/internal/models"
)

type createReportRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Location    string   `json:"location"`
	Categories  []string `json:"categories"`
}

func (req createReportRequest) validate() error {
	if strings.TrimSpace(req.Title) == "" {
		return apperrors.ValidationError{Field: "title", Message: "must not be empty"}
	}
	if strings.TrimSpace(req.Location) == "" {
		return apperrors.ValidationError{Field: "location", Message: "must not be empty"}
	}
	return nil
}

// createReportHandler accepts a community incident report. The response is
// written before notification fan-out runs; delivery failures never surface
// to the submitter.
func (h *Handler) createReportHandler(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC()
	report := models.Report{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Content:     req.Content,
		Location:    strings.TrimSpace(req.Location),
		Categories:  req.Categories,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.store.CreateReport(r.Context(), &report); err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to create report")
		return
	}

	h.notifier.Notify(report)

	h.writeJSON(w, http.StatusCreated, report)
}

// listReportsHandler returns reports, newest first
func (h *Handler) listReportsHandler(w http.ResponseWriter, r *http.Request) {
	q := models.ReportQuery{Limit: 100}

	params := r.URL.Query()
	if v := params.Get("verified"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid verified filter")
			return
		}
		q.Verified = &b
	}
	if v := params.Get("approved"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid approved filter")
			return
		}
		q.Approved = &b
	}
	if loc := params.Get("location"); loc != "" {
		q.Location = loc
	}
	if limit := params.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 || n > 1000 {
			h.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		q.Limit = n
	}

	reports, err := h.store.QueryReports(r.Context(), q)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to query reports")
		return
	}
	if reports == nil {
		reports = []models.Report{}
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"reports": reports,
		"count":   len(reports),
	})
}

// getReportHandler returns a single report by ID
func (h *Handler) getReportHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	report, err := h.store.GetReport(r.Context(), id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to get report")
		return
	}
	if report == nil {
		h.writeError(w, http.StatusNotFound, "report not found")
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}

// verifyReportHandler marks a report verified (admin only)
func (h *Handler) verifyReportHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.VerifyReport(r.Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "report not found")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "failed to verify report")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// approveReportHandler marks a verified report approved (admin only)
func (h *Handler) approveReportHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.ApproveReport(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			h.writeError(w, http.StatusNotFound, "report not found")
		case errors.Is(err, apperrors.ErrConflict):
			h.writeError(w, http.StatusConflict, "report must be verified before approval")
		default:
			h.writeError(w, http.StatusInternalServerError, "failed to approve report")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// deleteReportHandler removes a report (admin only)
func (h *Handler) deleteReportHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.DeleteReport(r.Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "report not found")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "failed to delete report")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
