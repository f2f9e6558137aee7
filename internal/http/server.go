package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	"github.com/tyratox/lazuli-auth/internal/config"
	identityHTTP "github.com/tyratox/lazuli-auth/internal/identity/http"
	oauthHTTP "github.com/tyratox/lazuli-auth/internal/oauth/http"
	oauthUseCase "github.com/tyratox/lazuli-auth/internal/oauth/usecase"
)

// Server is the API HTTP server carrying the OAuth2 protocol endpoints and
// the user endpoints.
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer creates the API server and registers all routes.
//
// The token endpoint authenticates clients itself and is optionally rate
// limited per IP; the decision, userinfo and account-deletion endpoints sit
// behind the bearer middleware, while the authorization endpoint is softly
// authenticated and enforces the user requirement in its handler.
// metricsMiddleware may be nil when metrics collection is disabled.
func NewServer(
	cfg *config.Config,
	lifecycleCtx context.Context,
	bearerUseCase oauthUseCase.BearerUseCase,
	authorizeHandler *oauthHTTP.AuthorizeHandler,
	tokenHandler *oauthHTTP.TokenHandler,
	userinfoHandler *oauthHTTP.UserinfoHandler,
	userHandler *identityHTTP.UserHandler,
	metricsMiddleware gin.HandlerFunc,
	logger *slog.Logger,
) *Server {
	router := gin.New()
	router.Use(requestid.New())
	router.Use(gin.Recovery())
	router.Use(CustomLoggerMiddleware(logger))
	if metricsMiddleware != nil {
		router.Use(metricsMiddleware)
	}

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", HealthHandler)
	router.GET("/ready", ReadinessHandler(lifecycleCtx))

	v1 := router.Group("/v1")
	{
		v1.POST("/users", userHandler.RegisterHandler)
		v1.POST("/login", userHandler.LoginHandler)

		tokenRoute := v1.Group("/oauth")
		if cfg.RateLimitTokenEnabled {
			tokenRoute.Use(oauthHTTP.TokenRateLimitMiddleware(
				cfg.RateLimitTokenRequestsPerSec,
				cfg.RateLimitTokenBurst,
				logger,
			))
		}
		tokenRoute.POST("/token", tokenHandler.TokenHandler)

		// The authorize endpoint resolves the user itself so it can answer
		// with OAuth-shaped errors; soft authentication only fills the
		// context.
		v1.GET("/oauth/authorize",
			oauthHTTP.SoftBearerMiddleware(bearerUseCase),
			authorizeHandler.AuthorizeHandler,
		)

		authenticated := v1.Group("")
		authenticated.Use(oauthHTTP.BearerMiddleware(bearerUseCase, logger))
		{
			authenticated.POST("/oauth/decision", authorizeHandler.DecisionHandler)
			authenticated.GET("/userinfo", userinfoHandler.UserinfoHandler)
			authenticated.DELETE("/users/me", userHandler.DeleteMeHandler)
		}
	}

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the API HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the API HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
