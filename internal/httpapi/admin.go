package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fraud-risk-engine/internal/hasher"
	"fraud-risk-engine/internal/refdata"
	"fraud-risk-engine/internal/refresh"
	apperrors "fraud-risk-engine/pkg/errors"
	"fraud-risk-engine/pkg/logger"
	"fraud-risk-engine/pkg/validator"
)

// AdminHandler serves the operator-only blacklist management and
// manual refresh-trigger routes.
type AdminHandler struct {
	repo     *refdata.Repository
	hasher   *hasher.Hasher
	pipeline *refresh.Pipeline
	log      *logger.Logger
}

// NewAdminHandler builds an AdminHandler.
func NewAdminHandler(repo *refdata.Repository, h *hasher.Hasher, pipeline *refresh.Pipeline, log *logger.Logger) *AdminHandler {
	return &AdminHandler{repo: repo, hasher: h, pipeline: pipeline, log: log}
}

type blacklistRequest struct {
	Value  string `json:"value"`
	Reason string `json:"reason"`
	Weight int    `json:"weight"`
}

// BlacklistEmail handles POST /api/v1/admin/blacklist/email.
func (h *AdminHandler) BlacklistEmail(w http.ResponseWriter, r *http.Request) {
	var req blacklistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ErrInvalidJSON)
		return
	}
	v := validator.New().Required("value", req.Value).Email("value", req.Value)
	if !v.IsValid() {
		writeError(w, apperrors.ErrInvalidJSON.WithDetails(v.Errors().Error()))
		return
	}
	if err := h.repo.RecordBlacklistEmail(h.hasher.Hash(req.Value), req.Reason, defaultWeight(req.Weight, 100)); err != nil {
		writeError(w, apperrors.ErrReferenceStoreFailure)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// BlacklistIP handles POST /api/v1/admin/blacklist/ip.
func (h *AdminHandler) BlacklistIP(w http.ResponseWriter, r *http.Request) {
	var req blacklistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ErrInvalidJSON)
		return
	}
	if v := validator.New().Required("value", req.Value); !v.IsValid() {
		writeError(w, apperrors.ErrInvalidJSON.WithDetails(v.Errors().Error()))
		return
	}
	if err := h.repo.RecordBlacklistIP(h.hasher.Hash(req.Value), req.Reason, defaultWeight(req.Weight, 100)); err != nil {
		writeError(w, apperrors.ErrReferenceStoreFailure)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// BlacklistCreditCard handles POST /api/v1/admin/blacklist/credit-card.
func (h *AdminHandler) BlacklistCreditCard(w http.ResponseWriter, r *http.Request) {
	var req blacklistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ErrInvalidJSON)
		return
	}
	if v := validator.New().Required("value", req.Value).MinLength("value", req.Value, 12); !v.IsValid() {
		writeError(w, apperrors.ErrInvalidJSON.WithDetails(v.Errors().Error()))
		return
	}
	if err := h.repo.RecordBlacklistCard(h.hasher.Hash(req.Value), req.Reason, defaultWeight(req.Weight, 100)); err != nil {
		writeError(w, apperrors.ErrReferenceStoreFailure)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// BlacklistPhone handles POST /api/v1/admin/blacklist/phone.
func (h *AdminHandler) BlacklistPhone(w http.ResponseWriter, r *http.Request) {
	var req blacklistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ErrInvalidJSON)
		return
	}
	if v := validator.New().Required("value", req.Value).Phone("value", req.Value); !v.IsValid() {
		writeError(w, apperrors.ErrInvalidJSON.WithDetails(v.Errors().Error()))
		return
	}
	if err := h.repo.RecordBlacklistPhone(h.hasher.Hash(req.Value), req.Reason, defaultWeight(req.Weight, 100)); err != nil {
		writeError(w, apperrors.ErrReferenceStoreFailure)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func defaultWeight(w, fallback int) int {
	if w <= 0 {
		return fallback
	}
	return w
}

// RefreshSource handles POST /api/v1/admin/refresh/{source}, the HTTP
// face of the "refresh" command spec.md §6 also exposes as a CLI.
// ?force=true bypasses the minimum-interval gate.
func (h *AdminHandler) RefreshSource(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")
	force := r.URL.Query().Get("force") == "true"

	if source == "all" {
		report := h.pipeline.RefreshAll(r.Context(), force)
		writeSuccess(w, http.StatusOK, report)
		return
	}

	report := h.pipeline.RefreshOne(r.Context(), source, force)
	if !report.Success {
		writeError(w, apperrors.ErrRefreshFailed.WithDetails(report.Error))
		return
	}
	writeSuccess(w, http.StatusOK, report)
}
