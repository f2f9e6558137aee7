// Package app provides the dependency injection container for assembling
// application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/tyratox/lazuli-auth/internal/config"
	"github.com/tyratox/lazuli-auth/internal/database"
	"github.com/tyratox/lazuli-auth/internal/http"
	identityHTTP "github.com/tyratox/lazuli-auth/internal/identity/http"
	identityService "github.com/tyratox/lazuli-auth/internal/identity/service"
	identityStrategy "github.com/tyratox/lazuli-auth/internal/identity/strategy"
	identityUseCase "github.com/tyratox/lazuli-auth/internal/identity/usecase"
	"github.com/tyratox/lazuli-auth/internal/metrics"
	oauthHTTP "github.com/tyratox/lazuli-auth/internal/oauth/http"
	oauthService "github.com/tyratox/lazuli-auth/internal/oauth/service"
	oauthUseCase "github.com/tyratox/lazuli-auth/internal/oauth/usecase"
)

// Container holds all application dependencies and provides methods to access
// them. It follows the lazy initialization pattern - components are created on
// first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Managers
	txManager database.TxManager

	// Services
	generator    oauthService.GeneratorService
	hasher       oauthService.HasherService
	consentStore oauthService.ConsentTransactionStore
	passwordSvc  identityService.PasswordService

	// Repositories
	clientRepo oauthUseCase.ClientRepository
	codeRepo   oauthUseCase.CodeRepository
	tokenRepo  oauthUseCase.TokenRepository
	scopeRepo  oauthUseCase.ScopeRepository
	userRepo   userRepository

	// Use Cases
	clientUseCase    oauthUseCase.ClientUseCase
	authorizeUseCase oauthUseCase.AuthorizeUseCase
	exchangeUseCase  oauthUseCase.ExchangeUseCase
	bearerUseCase    oauthUseCase.BearerUseCase
	userUseCase      identityUseCase.UserUseCase

	// Strategies
	localPasswordStrategy    identityStrategy.Strategy
	bearerTokenStrategy      identityStrategy.Strategy
	clientCredentialStrategy identityStrategy.Strategy

	// Handlers
	authorizeHandler *oauthHTTP.AuthorizeHandler
	tokenHandler     *oauthHTTP.TokenHandler
	userinfoHandler  *oauthHTTP.UserinfoHandler
	userHandler      *identityHTTP.UserHandler

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                           sync.Mutex
	loggerInit                   sync.Once
	dbInit                       sync.Once
	metricsProviderInit          sync.Once
	businessMetricsInit          sync.Once
	txManagerInit                sync.Once
	generatorInit                sync.Once
	hasherInit                   sync.Once
	consentStoreInit             sync.Once
	passwordSvcInit              sync.Once
	clientRepoInit               sync.Once
	codeRepoInit                 sync.Once
	tokenRepoInit                sync.Once
	scopeRepoInit                sync.Once
	userRepoInit                 sync.Once
	clientUseCaseInit            sync.Once
	authorizeUseCaseInit         sync.Once
	exchangeUseCaseInit          sync.Once
	bearerUseCaseInit            sync.Once
	userUseCaseInit              sync.Once
	localPasswordStrategyInit    sync.Once
	bearerTokenStrategyInit      sync.Once
	clientCredentialStrategyInit sync.Once
	authorizeHandlerInit         sync.Once
	tokenHandlerInit             sync.Once
	userinfoHandlerInit          sync.Once
	userHandlerInit              sync.Once
	httpServerInit               sync.Once
	metricsServerInit            sync.Once
	initErrors                   map[string]error
}

// NewContainer creates a new dependency injection container with the provided
// configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// MetricsProvider returns the OpenTelemetry metrics provider, or nil when
// metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = c.initMetricsProvider()
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. When metrics are
// disabled a no-op implementation is returned so use cases never need to
// branch on configuration.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// HTTPServer returns the API HTTP server instance. The lifecycle context
// drives the readiness endpoint: once it is cancelled the server reports not
// ready.
func (c *Container) HTTPServer(lifecycleCtx context.Context) (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer(lifecycleCtx)
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics HTTP server instance, or nil when metrics
// are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initMetricsProvider creates the metrics provider when metrics are enabled.
func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}

	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

// initBusinessMetrics creates the business metrics recorder.
func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}

	businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return businessMetrics, nil
}

// initHTTPServer creates the API HTTP server with all handlers wired in.
func (c *Container) initHTTPServer(lifecycleCtx context.Context) (*http.Server, error) {
	bearerUseCase, err := c.BearerUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get bearer use case for http server: %w", err)
	}

	authorizeHandler, err := c.AuthorizeHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get authorize handler for http server: %w", err)
	}

	tokenHandler, err := c.TokenHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get token handler for http server: %w", err)
	}

	userinfoHandler, err := c.UserinfoHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get userinfo handler for http server: %w", err)
	}

	userHandler, err := c.UserHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get user handler for http server: %w", err)
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}
	var metricsMiddleware gin.HandlerFunc
	if provider != nil {
		metricsMiddleware = metrics.HTTPMetricsMiddleware(provider.MeterProvider(), c.config.MetricsNamespace)
	}

	return http.NewServer(
		c.config,
		lifecycleCtx,
		bearerUseCase,
		authorizeHandler,
		tokenHandler,
		userinfoHandler,
		userHandler,
		metricsMiddleware,
		c.Logger(),
	), nil
}

// initMetricsServer creates the metrics HTTP server when metrics are enabled.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}
	if provider == nil {
		return nil, nil
	}

	return http.NewMetricsServer(
		c.config.ServerHost,
		c.config.MetricsPort,
		c.Logger(),
		provider,
	), nil
}
