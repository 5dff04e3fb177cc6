package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"kvgateway/internal/config"
	"kvgateway/pkg/logger"
)

// redisConfig returns a config pointing at the given miniredis server
func redisConfig(t *testing.T, mr *miniredis.Miniredis) *config.Config {
	t.Helper()
	host, port, err := net.SplitHostPort(mr.Addr())
	if err != nil {
		t.Fatalf("invalid miniredis address: %v", err)
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		t.Fatalf("invalid miniredis port: %v", err)
	}

	cfg := config.Default()
	cfg.HTTPHost = "127.0.0.1"
	cfg.HTTPPort = 0
	cfg.RedisHost = host
	cfg.RedisPort = p
	return cfg
}

// Test mapping function from config LogLevel to logger LogLevel
func TestMapLogLevel(t *testing.T) {
	tests := []struct {
		name        string
		configLevel config.LogLevel
		want        logger.LogLevel
	}{
		{"debug level", config.LogLevelDebug, logger.LevelDebug},
		{"info level", config.LogLevelInfo, logger.LevelInfo},
		{"warn level", config.LogLevelWarn, logger.LevelWarn},
		{"error level", config.LogLevelError, logger.LevelError},
		{"unknown level", config.LogLevel("verbose"), logger.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapLogLevel(tt.configLevel)
			if got != tt.want {
				t.Errorf("mapLogLevel(%v) = %v, want %v", tt.configLevel, got, tt.want)
			}
		})
	}
}

// Test Application creation and initialization
func TestNewApplication(t *testing.T) {
	memoryConfig := config.Default()
	memoryConfig.StoreBackend = config.StoreMemory

	redisCfg := config.Default()

	unknownConfig := config.Default()
	unknownConfig.StoreBackend = config.StoreBackend("etcd")

	tests := []struct {
		name        string
		config      *config.Config
		wantErr     bool
		errContains string
	}{
		{name: "memory backend", config: memoryConfig},
		{name: "redis backend", config: redisCfg},
		{name: "nil config", config: nil, wantErr: true, errContains: "config cannot be nil"},
		{name: "unknown backend", config: unknownConfig, wantErr: true, errContains: "unknown store backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, err := NewApplication(tt.config)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
					return
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("expected error to contain %q, got %q", tt.errContains, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			t.Cleanup(func() { _ = app.gateway.Close() })

			if app.config != tt.config {
				t.Error("config not properly set")
			}
			if app.gateway == nil {
				t.Error("gateway not initialized")
			}
		})
	}
}

func TestApplication_checkStore(t *testing.T) {
	mr := miniredis.RunT(t)
	app, err := NewApplication(redisConfig(t, mr))
	if err != nil {
		t.Fatalf("failed to create application: %v", err)
	}
	t.Cleanup(func() { _ = app.gateway.Close() })

	if !app.checkStore(context.Background()) {
		t.Error("expected store to be reachable")
	}

	mr.Close()
	if app.checkStore(context.Background()) {
		t.Error("expected store to be unreachable after the server stopped")
	}
}

// Test HTTP server setup against a real Redis protocol server
func TestApplication_setupHTTPServer(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := redisConfig(t, mr)

	app, err := NewApplication(cfg)
	if err != nil {
		t.Fatalf("failed to create application: %v", err)
	}
	t.Cleanup(func() { _ = app.gateway.Close() })

	server := app.setupHTTPServer()
	if server == nil {
		t.Fatal("expected non-nil HTTP server")
	}
	if server.Addr != cfg.Address() {
		t.Errorf("expected server address %s, got %s", cfg.Address(), server.Addr)
	}
	if server.ReadHeaderTimeout == 0 {
		t.Error("expected a read header timeout")
	}

	ts := httptest.NewServer(server.Handler)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/set", "application/json",
		strings.NewReader(`{"key":"username","value":"john_doe","ttl":3600}`))
	if err != nil {
		t.Fatalf("set request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	got, err := mr.Get("username")
	if err != nil || got != "john_doe" {
		t.Errorf("expected redis to hold john_doe, got %q (%v)", got, err)
	}
	if ttl := mr.TTL("username"); ttl != time.Hour {
		t.Errorf("expected ttl of one hour, got %v", ttl)
	}
}

// Test graceful shutdown
func TestApplication_Shutdown(t *testing.T) {
	cfg := config.Default()
	cfg.StoreBackend = config.StoreMemory

	app, err := NewApplication(cfg)
	if err != nil {
		t.Fatalf("failed to create application: %v", err)
	}
	app.setupHTTPServer()

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := app.Shutdown(ctx); err != nil {
		t.Errorf("unexpected error during shutdown: %v", err)
	}

	if app.gateway.Ping(context.Background()) {
		t.Error("expected the store to be closed after shutdown")
	}
}

func TestApplication_ShutdownClosesStoreWhenDrainFails(t *testing.T) {
	cfg := config.Default()
	cfg.StoreBackend = config.StoreMemory

	app, err := NewApplication(cfg)
	if err != nil {
		t.Fatalf("failed to create application: %v", err)
	}

	// a request that never finishes keeps the server from draining
	release := make(chan struct{})
	defer close(release)
	started := make(chan struct{})
	server := app.setupHTTPServer()
	server.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	go func() { _ = server.Serve(ln) }()
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String())
		if err == nil {
			resp.Body.Close()
		}
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := app.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if app.gateway.Ping(context.Background()) {
		t.Error("expected the store to be closed even though the server did not drain")
	}
}
