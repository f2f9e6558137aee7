package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/tyratox/lazuli-auth/internal/config"
	identityHTTP "github.com/tyratox/lazuli-auth/internal/identity/http"
	oauthHTTP "github.com/tyratox/lazuli-auth/internal/oauth/http"
)

func newTestServer(t *testing.T, lifecycleCtx context.Context) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		ServerHost: "127.0.0.1",
		ServerPort: 0,
	}

	return NewServer(
		cfg,
		lifecycleCtx,
		nil, // bearer use case is not reached without an Authorization header
		oauthHTTP.NewAuthorizeHandler(nil, nil, logger),
		oauthHTTP.NewTokenHandler(nil, nil, logger),
		oauthHTTP.NewUserinfoHandler(logger),
		identityHTTP.NewUserHandler(nil, nil, nil, logger),
		nil, // metrics middleware is exercised by the metrics package tests
		logger,
	)
}

func TestServer_HealthAndReadiness(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	server := newTestServer(t, ctx)

	recorder := httptest.NewRecorder()
	server.GetHandler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = httptest.NewRecorder()
	server.GetHandler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)

	// Shutdown flips readiness
	cancel()

	recorder = httptest.NewRecorder()
	server.GetHandler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}

func TestServer_ProtectedRoutesRequireBearerToken(t *testing.T) {
	server := newTestServer(t, context.Background())

	protected := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/v1/oauth/decision"},
		{http.MethodGet, "/v1/userinfo"},
		{http.MethodDelete, "/v1/users/me"},
	}

	for _, route := range protected {
		recorder := httptest.NewRecorder()
		server.GetHandler().ServeHTTP(recorder, httptest.NewRequest(route.method, route.path, nil))
		assert.Equal(t, http.StatusUnauthorized, recorder.Code, "%s %s", route.method, route.path)
	}
}

func TestServer_AuthorizeRequiresUser(t *testing.T) {
	server := newTestServer(t, context.Background())

	// Soft authentication leaves the context without a user, so a
	// well-formed authorization request still fails in the handler.
	target := "/v1/oauth/authorize" +
		"?response_type=code" +
		"&client_id=0193b5d8-7a30-7d21-b8a5-6a5e1bafc071" +
		"&redirect_uri=https%3A%2F%2Fapp.example.com%2Fcallback" +
		"&scope=profile.read"

	recorder := httptest.NewRecorder()
	server.GetHandler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestServer_UnknownRouteYields404(t *testing.T) {
	server := newTestServer(t, context.Background())

	recorder := httptest.NewRecorder()
	server.GetHandler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
