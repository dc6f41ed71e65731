package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeline/internal/auth/store/revocation"
	jwttoken "lifeline/internal/jwt_token"
	id "lifeline/pkg/domain"
	"lifeline/pkg/platform/httputil"
	"lifeline/pkg/requestcontext"
	"lifeline/pkg/testutil"
)

type publicStub struct{}

func (publicStub) RegisterPublic(r chi.Router) {
	r.Post("/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"ok": "login"})
	})
}

type whoamiStub struct{}

func (whoamiStub) Register(r chi.Router) {
	r.Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		httputil.WriteJSON(w, http.StatusOK, map[string]string{
			"user_id":    requestcontext.UserID(ctx).String(),
			"request_id": requestcontext.RequestID(ctx),
		})
	})
}

func newTestRouter(t *testing.T, health map[string]HealthCheck) (http.Handler, *jwttoken.JWTService, *revocation.InMemoryTRL) {
	t.Helper()
	tokens := jwttoken.NewJWTService("router-test-key", "lifeline")
	trl := revocation.NewInMemoryTRL(nil)
	router := NewRouter(Deps{
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Verifier:    tokens,
		Revocations: trl,
		Health:      health,
	}, []PublicModule{publicStub{}}, []Module{whoamiStub{}})
	return router, tokens, trl
}

func bearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestRouterPublicRoutesNeedNoToken(t *testing.T) {
	router, _, _ := newTestRouter(t, nil)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/login", map[string]string{}))

	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestRouterAuthenticatedRoutes(t *testing.T) {
	router, tokens, trl := newTestRouter(t, nil)
	userID := id.UserID(uuid.New())

	t.Run("missing token is rejected", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequestWithBody(t, http.MethodGet, "/auth/me", ""))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("refresh token is not accepted as access token", func(t *testing.T) {
		issued, err := tokens.GenerateRefreshToken(userID, id.RoleDonor, time.Hour)
		require.NoError(t, err)

		rr := testutil.DoRequest(router, bearer(testutil.NewRequestWithBody(t, http.MethodGet, "/auth/me", ""), issued.Token))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("valid access token reaches the module with the principal set", func(t *testing.T) {
		issued, err := tokens.GenerateAccessToken(userID, id.RoleDonor, time.Hour)
		require.NoError(t, err)

		rr := testutil.DoRequest(router, bearer(testutil.NewRequestWithBody(t, http.MethodGet, "/auth/me", ""), issued.Token))
		testutil.AssertStatus(t, rr, http.StatusOK)
		body := testutil.UnmarshalResponse[map[string]string](t, rr)
		assert.Equal(t, userID.String(), (*body)["user_id"])
		assert.NotEmpty(t, (*body)["request_id"])
	})

	t.Run("revoked access token is rejected", func(t *testing.T) {
		issued, err := tokens.GenerateAccessToken(userID, id.RoleDonor, time.Hour)
		require.NoError(t, err)
		require.NoError(t, trl.RevokeToken(context.Background(), issued.JTI, time.Hour))

		rr := testutil.DoRequest(router, bearer(testutil.NewRequestWithBody(t, http.MethodGet, "/auth/me", ""), issued.Token))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})
}

func TestRouterHealth(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		router, _, _ := newTestRouter(t, map[string]HealthCheck{
			"database": func(context.Context) error { return nil },
		})

		rr := testutil.DoRequest(router, testutil.NewRequestWithBody(t, http.MethodGet, "/healthz", ""))
		testutil.AssertStatus(t, rr, http.StatusOK)
		body := testutil.UnmarshalResponse[healthResponse](t, rr)
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, "ok", body.Checks["database"])
	})

	t.Run("a failing check degrades health", func(t *testing.T) {
		router, _, _ := newTestRouter(t, map[string]HealthCheck{
			"database": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		})

		rr := testutil.DoRequest(router, testutil.NewRequestWithBody(t, http.MethodGet, "/healthz", ""))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
		body := testutil.UnmarshalResponse[healthResponse](t, rr)
		assert.Equal(t, "degraded", body.Status)
		assert.Equal(t, "connection refused", body.Checks["redis"])
	})
}

func TestRouterExposesMetrics(t *testing.T) {
	router, _, _ := newTestRouter(t, nil)

	rr := testutil.DoRequest(router, testutil.NewRequestWithBody(t, http.MethodGet, "/metrics", ""))

	testutil.AssertStatus(t, rr, http.StatusOK)
}
