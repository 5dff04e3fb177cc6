package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kvgateway/internal/api"
	"kvgateway/internal/config"
	"kvgateway/internal/store"
	"kvgateway/pkg/logger"
)

const (
	shutdownTimeout    = 10 * time.Second
	startupPingTimeout = 5 * time.Second
)

// Application holds all the application components
type Application struct {
	config     *config.Config
	logger     *logger.Logger
	gateway    *store.Gateway
	httpServer *http.Server
	startedAt  time.Time
}

// NewApplication creates a new application instance
func NewApplication(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	log, err := logger.New(logger.Config{
		Level:      mapLogLevel(cfg.LogLevel),
		EnableJSON: cfg.LogFormat == config.LogFormatJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	backend, err := newBackend(cfg)
	if err != nil {
		return nil, err
	}

	app := &Application{
		config:  cfg,
		logger:  log,
		gateway: store.NewGateway(backend, log),
	}

	return app, nil
}

// newBackend opens the store selected by cfg.StoreBackend. The Redis client
// connects lazily, so an unreachable server is not an error here.
func newBackend(cfg *config.Config) (store.Backend, error) {
	switch cfg.StoreBackend {
	case config.StoreRedis, "":
		return store.NewRedisStore(store.RedisOptions{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}), nil
	case config.StoreMemory:
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.StoreBackend)
	}
}

// mapLogLevel maps config.LogLevel to logger.LogLevel
func mapLogLevel(configLevel config.LogLevel) logger.LogLevel {
	switch configLevel {
	case config.LogLevelDebug:
		return logger.LevelDebug
	case config.LogLevelInfo:
		return logger.LevelInfo
	case config.LogLevelWarn:
		return logger.LevelWarn
	case config.LogLevelError:
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}

// checkStore pings the store once at startup. An unreachable store is
// reported but does not stop the server; /health keeps reporting it.
func (app *Application) checkStore(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, startupPingTimeout)
	defer cancel()

	if !app.gateway.Ping(ctx) {
		app.logger.Warn("store is not reachable at startup",
			"backend", app.config.StoreBackend,
			"address", app.config.RedisAddr())
		return false
	}

	app.logger.Info("connected to store", "backend", app.config.StoreBackend)
	return true
}

// setupHTTPServer creates and configures the HTTP server
func (app *Application) setupHTTPServer() *http.Server {
	// Setup API routes with all middleware (request id, CORS, logging, recovery)
	handler := api.SetupRoutes(app.gateway, app.logger, api.AppInfo{
		Name:    app.config.AppName,
		Version: app.config.AppVersion,
	})

	server := &http.Server{
		Addr:              app.config.Address(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	app.httpServer = server
	return server
}

// Shutdown gracefully shuts down the application. The store is closed even
// when the HTTP server fails to drain in time.
func (app *Application) Shutdown(ctx context.Context) error {
	app.logger.Info("shutting down application")

	var serverErr, closeErr error
	if app.httpServer != nil {
		if serverErr = app.httpServer.Shutdown(ctx); serverErr != nil {
			app.logger.Error("failed to shutdown HTTP server", "error", serverErr)
		}
	}

	if app.gateway != nil {
		if closeErr = app.gateway.Close(); closeErr != nil {
			app.logger.Error("failed to close store", "error", closeErr)
		}
	}

	if err := errors.Join(serverErr, closeErr); err != nil {
		return err
	}

	app.logger.ShutdownInfo(app.config.AppName, time.Since(app.startedAt))
	return nil
}

// Run starts the application
func (app *Application) Run() error {
	app.startedAt = time.Now()
	app.checkStore(context.Background())

	server := app.setupHTTPServer()

	// Start HTTP server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		app.logger.StartupInfo(app.config.AppName, app.config.AppVersion, server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		app.logger.Info("received shutdown signal")
	case err := <-serverErr:
		app.logger.Error("HTTP server error", "error", err)
		_ = app.gateway.Close()
		return err
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return app.Shutdown(ctx)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Create application
	app, err := NewApplication(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create application: %v\n", err)
		os.Exit(1)
	}

	// Run application
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "application error: %v\n", err)
		os.Exit(1)
	}
}
