package httpapi

import (
	"encoding/json"
	"net/http"

	"fraud-risk-engine/internal/checks"
	"fraud-risk-engine/internal/riskengine"
	apperrors "fraud-risk-engine/pkg/errors"
	"fraud-risk-engine/pkg/logger"
	"fraud-risk-engine/pkg/scontext"
)

// evaluateRequest mirrors spec.md §6's Evaluate request body.
type evaluateRequest struct {
	Email      string              `json:"email"`
	IP         string              `json:"ip"`
	CreditCard string              `json:"credit_card"`
	Phone      string              `json:"phone"`
	UserAgent  string              `json:"user_agent"`
	Domain     string              `json:"domain"`
	Country    string              `json:"country"`
	Timezone   string              `json:"timezone"`
	Headers    map[string][]string `json:"headers"`
	DeviceType string              `json:"device_type"`
	Metadata   map[string]string   `json:"metadata"`
}

func (r evaluateRequest) toInput() *checks.Input {
	return &checks.Input{
		Email:      r.Email,
		IP:         r.IP,
		CreditCard: r.CreditCard,
		Phone:      r.Phone,
		UserAgent:  r.UserAgent,
		Domain:     r.Domain,
		Country:    r.Country,
		Timezone:   r.Timezone,
		Headers:    r.Headers,
		DeviceType: r.DeviceType,
		Metadata:   r.Metadata,
	}
}

// EvaluateHandler serves POST /api/v1/evaluate, the single entry point
// spec.md §6 describes.
type EvaluateHandler struct {
	evaluator *riskengine.Evaluator
	log       *logger.Logger
}

// NewEvaluateHandler builds an EvaluateHandler over a configured Evaluator.
func NewEvaluateHandler(evaluator *riskengine.Evaluator, log *logger.Logger) *EvaluateHandler {
	return &EvaluateHandler{evaluator: evaluator, log: log}
}

func (h *EvaluateHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ErrInvalidJSON.WithDetails(err.Error()))
		return
	}

	ctx := riskengine.WithRequestID(r.Context(), r.Header.Get("X-Request-ID"))
	caller := callerFromContext(r.Context())

	// Enrich the context with the fields pkg/logger's ErrorCtx/InfoCtx
	// pull out, so the failure log below (and anything the Evaluator
	// logs) carries the request ID and caller without threading them
	// through as explicit arguments.
	ctx = scontext.WithUserID(ctx, caller.UserID).WithRequestID(r.Header.Get("X-Request-ID")).Build()

	result, err := h.evaluator.Evaluate(ctx, req.toInput(), caller)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok {
			writeError(w, appErr)
			return
		}
		h.log.ErrorCtx(ctx, "evaluation failed", err)
		writeError(w, apperrors.ErrInternalServerError)
		return
	}

	writeSuccess(w, http.StatusOK, result)
}

// writeSuccess renders {success:true, data:...} per spec.md §6's
// response envelope.
func writeSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// writeError renders {success:false, error:{code,message,details}} at
// the AppError's mapped HTTP status.
func writeError(w http.ResponseWriter, appErr *apperrors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.HTTPStatus())
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   appErr,
	})
}
