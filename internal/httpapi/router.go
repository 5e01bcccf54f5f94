package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fraud-risk-engine/pkg/auth"
)

// RouterConfig bundles every dependency NewRouter wires into the HTTP
// surface.
type RouterConfig struct {
	Evaluate       *EvaluateHandler
	Admin          *AdminHandler
	Auth           *auth.AuthMiddleware
	AllowedOrigins []string
	Logging        func(http.Handler) http.Handler
}

// NewRouter builds the chi.Mux exposing spec.md §6's Evaluate endpoint
// and the admin surface, mirroring the teacher api-gateway's route-
// group structure: public health check, then an authenticated group,
// with admin routes further restricted by role.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cfg.Logging)
	r.Use(NewCORSMiddleware(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(cfg.Auth.HTTPMiddleware)

			r.Post("/evaluate", cfg.Evaluate.Evaluate)

			r.Route("/admin", func(r chi.Router) {
				r.Use(cfg.Auth.RequireRole(auth.RoleAdmin))

				r.Post("/blacklist/email", cfg.Admin.BlacklistEmail)
				r.Post("/blacklist/ip", cfg.Admin.BlacklistIP)
				r.Post("/blacklist/credit-card", cfg.Admin.BlacklistCreditCard)
				r.Post("/blacklist/phone", cfg.Admin.BlacklistPhone)
				r.Post("/refresh/{source}", cfg.Admin.RefreshSource)
			})
		})
	})

	return r
}
