package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"lifeline/internal/platform/metrics"
	"lifeline/pkg/platform/httputil"
	authmw "lifeline/pkg/platform/middleware/auth"
	"lifeline/pkg/platform/middleware/metadata"
	"lifeline/pkg/platform/middleware/request"
	"lifeline/pkg/platform/middleware/requesttime"
)

// Module mounts the routes that require an authenticated caller.
type Module interface {
	Register(r chi.Router)
}

// PublicModule mounts routes reachable without a token.
type PublicModule interface {
	RegisterPublic(r chi.Router)
}

// HealthCheck probes one backing dependency.
type HealthCheck func(ctx context.Context) error

type Deps struct {
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	Verifier    authmw.TokenVerifier
	Revocations authmw.RevocationChecker
	Health      map[string]HealthCheck
}

// NewRouter builds the HTTP surface: shared middleware, probes, the public
// auth endpoints and every authenticated module.
func NewRouter(deps Deps, public []PublicModule, modules []Module) http.Handler {
	r := chi.NewRouter()
	r.Use(
		request.RequestID,
		request.Recover(deps.Logger),
		metadata.ClientMetadata,
		requesttime.Middleware,
		request.Logger(deps.Logger),
		deps.Metrics.Middleware,
	)

	r.Get("/healthz", healthHandler(deps.Health))
	r.Handle("/metrics", metrics.Handler())

	for _, m := range public {
		m.RegisterPublic(r)
	}

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(deps.Verifier, deps.Revocations, deps.Logger))
		for _, m := range modules {
			m.Register(r)
		}
	})

	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
