package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/peacewatch/peacewatch/internal/errors"
	"github.com/peacewatch/peacewatch/internal/models"
	"github.com/peacewatch/peacewatch/pkg/utils"
)

type createSubscriptionRequest struct {
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Location string `json:"location"`
	Method   string `json:"method"`
}

func (req createSubscriptionRequest) validate() error {
	if strings.TrimSpace(req.Location) == "" {
		return apperrors.ValidationError{Field: "location", Message: "must not be empty"}
	}
	if strings.TrimSpace(req.Phone) == "" && strings.TrimSpace(req.Email) == "" {
		return apperrors.ValidationError{Field: "phone", Message: "phone or email is required"}
	}
	return nil
}

// createSubscriptionHandler registers a notification recipient. Phone
// numbers are normalized to international format here, once; they are not
// re-validated later.
func (h *Handler) createSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	var req createSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sub := models.Subscription{
		ID:        uuid.NewString(),
		Phone:     utils.NormalizePhone(req.Phone, h.cfg.Notifier.CountryCode),
		Email:     strings.TrimSpace(req.Email),
		Location:  strings.TrimSpace(req.Location),
		Method:    strings.TrimSpace(req.Method),
		CreatedAt: time.Now().UTC(),
	}

	if err := h.store.CreateSubscription(r.Context(), &sub); err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to create subscription")
		return
	}

	h.writeJSON(w, http.StatusCreated, sub)
}
