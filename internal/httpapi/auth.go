package httpapi

import (
	"context"

	"fraud-risk-engine/internal/riskengine"
	"fraud-risk-engine/pkg/auth"
)

// callerFromContext reads the JWT claims pkg/auth's HTTPMiddleware
// attaches to the request context and maps them onto the caller
// identity the Evaluator's audit trail records. An unauthenticated
// request (no middleware applied, or a public route) simply yields an
// empty CallerInfo rather than an error — the Evaluate endpoint itself
// decides whether authentication is required.
func callerFromContext(ctx context.Context) riskengine.CallerInfo {
	claims, ok := ctx.Value("claims").(*auth.Claims)
	if !ok || claims == nil {
		return riskengine.CallerInfo{}
	}
	return riskengine.CallerInfo{UserID: claims.UserID}
}
