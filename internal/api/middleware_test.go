package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kvgateway/pkg/logger"
)

func TestLoggingMiddleware(t *testing.T) {
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"endpoint not found"}`))
	})

	var buf bytes.Buffer
	l, err := logger.New(logger.Config{Level: logger.LevelDebug, EnableJSON: true, Output: &buf})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	handler := RequestIDMiddleware(LoggingMiddleware(l)(testHandler))

	req := httptest.NewRequest(http.MethodGet, "/missing?x=1", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	req.Header.Set("User-Agent", "test-agent")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}

	output := buf.String()
	for _, want := range []string{
		`"msg":"HTTP Request"`,
		`"msg":"HTTP Response"`,
		`"msg":"HTTP Error Response Body"`,
		`"status_code":404`,
		`"request_id":"req-42"`,
		`"user_agent":"test-agent"`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected log output to contain %s", want)
		}
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestIDFromContext(r.Context())
	})
	handler := RequestIDMiddleware(testHandler)

	t.Run("echoes the caller's id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
			t.Errorf("expected header abc-123, got %q", got)
		}
		if seen != "abc-123" {
			t.Errorf("expected context id abc-123, got %q", seen)
		}
	})

	t.Run("generates an id when absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		got := rec.Header().Get(RequestIDHeader)
		if len(got) != 36 {
			t.Errorf("expected a generated uuid, got %q", got)
		}
		if seen != got {
			t.Errorf("expected context id %q, got %q", got, seen)
		}
	})
}

func TestCORSMiddleware(t *testing.T) {
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := CORSMiddleware(testHandler)

	tests := []struct {
		name           string
		method         string
		expectedStatus int
	}{
		{"preflight", http.MethodOptions, http.StatusOK},
		{"GET passes through", http.MethodGet, http.StatusTeapot},
		{"POST passes through", http.MethodPost, http.StatusTeapot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/set", nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
				t.Errorf("expected Access-Control-Allow-Origin *, got %q", got)
			}
			if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
				t.Errorf("unexpected Access-Control-Allow-Methods %q", got)
			}
			if got := rec.Header().Get("Access-Control-Expose-Headers"); got != RequestIDHeader {
				t.Errorf("unexpected Access-Control-Expose-Headers %q", got)
			}
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	panicHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	handler := RecoveryMiddleware(testLogger(t))(panicHandler)

	req := httptest.NewRequest(http.MethodGet, "/keys", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"detail":"boom"}` {
		t.Errorf("unexpected body %s", got)
	}
	if strings.Contains(rec.Body.String(), "goroutine") {
		t.Error("expected no stack trace in the response")
	}
}

func TestRecoveryMiddleware_AbortHandler(t *testing.T) {
	abortHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	})
	handler := RecoveryMiddleware(testLogger(t))(abortHandler)

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Errorf("expected ErrAbortHandler to propagate, got %v", rec)
		}
	}()

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	if rw.statusCode != http.StatusOK {
		t.Errorf("expected default status %d, got %d", http.StatusOK, rw.statusCode)
	}

	rw.WriteHeader(http.StatusCreated)
	n, err := rw.Write([]byte("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rw.statusCode != http.StatusCreated || rec.Code != http.StatusCreated {
		t.Errorf("expected status %d, got %d/%d", http.StatusCreated, rw.statusCode, rec.Code)
	}
	if n != 5 || rw.size != 5 {
		t.Errorf("expected size 5, got %d/%d", n, rw.size)
	}
	if rw.body.String() != "hello" || rec.Body.String() != "hello" {
		t.Errorf("unexpected body %q/%q", rw.body.String(), rec.Body.String())
	}
}
