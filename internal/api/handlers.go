package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"kvgateway/internal/apperr"
	"kvgateway/pkg/logger"
)

// Gateway is the store contract the handlers depend on. Failures are
// reported through the return values, never as errors.
type Gateway interface {
	Ping(ctx context.Context) bool
	SetValue(ctx context.Context, key, value string, ttl time.Duration) bool
	GetValue(ctx context.Context, key string) (string, bool)
	Increment(ctx context.Context, key string) (int64, bool)
	DeleteKey(ctx context.Context, key string) bool
	ListAllKeys(ctx context.Context) []string
}

// AppInfo identifies the running application on the home page
type AppInfo struct {
	Name    string
	Version string
}

// Handler holds the dependencies for API handlers
type Handler struct {
	gateway Gateway
	logger  *logger.Logger
	info    AppInfo
}

// NewHandler creates a new Handler instance with dependencies
func NewHandler(gw Gateway, l *logger.Logger, info AppInfo) *Handler {
	return &Handler{
		gateway: gw,
		logger:  l,
		info:    info,
	}
}

const (
	statusSuccess  = "success"
	statusNotFound = "not_found"
)

// Request and response types for API handlers
type ErrorResponse struct {
	Detail string `json:"detail"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Application string `json:"application"`
	Redis       string `json:"redis"`
}

// SetRequest caps ttl so that ttl*time.Second fits in a time.Duration
type SetRequest struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value" validate:"required"`
	TTL   *int64 `json:"ttl,omitempty" validate:"omitempty,gte=0,lte=9223372036"`
}

type SetResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Key     string `json:"key"`
	Value   string `json:"value"`
	TTL     *int64 `json:"ttl"`
}

type GetQuery struct {
	Key string `json:"key" validate:"required"`
}

type GetResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

type KeyRequest struct {
	Key string `json:"key" validate:"required"`
}

type IncrResponse struct {
	Status  string `json:"status"`
	Key     string `json:"key"`
	Value   int64  `json:"value"`
	Message string `json:"message"`
}

type KeyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Key     string `json:"key"`
}

type KeysResponse struct {
	Status string   `json:"status"`
	Count  int      `json:"count"`
	Keys   []string `json:"keys"`
}

// writeJSON writes JSON response with proper content type
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes error response with proper content type
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}

// Health handles GET /health. It always answers 200; an unreachable store
// only degrades the reported status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) error {
	response := HealthResponse{
		Status:      "healthy",
		Application: "running",
		Redis:       "connected",
	}

	if !h.gateway.Ping(r.Context()) {
		h.logger.WarnContext(r.Context(), "Health: store unreachable",
			"kind", apperr.KindStoreUnavailable.String())
		response.Status = "unhealthy"
		response.Redis = "disconnected"
	}

	writeJSON(w, http.StatusOK, response)
	return nil
}

// SetKey handles POST /set
func (h *Handler) SetKey(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var req SetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	var ttl time.Duration
	if req.TTL != nil {
		ttl = time.Duration(*req.TTL) * time.Second
	}

	if !h.gateway.SetValue(ctx, req.Key, req.Value, ttl) {
		return apperr.New(apperr.KindStoreOperation, "failed to set value")
	}

	h.logger.InfoContext(ctx, "SetKey: success", "key", req.Key, "ttl", ttl.String())
	writeJSON(w, http.StatusOK, SetResponse{
		Status:  statusSuccess,
		Message: fmt.Sprintf("value set for key '%s'", req.Key),
		Key:     req.Key,
		Value:   req.Value,
		TTL:     req.TTL,
	})
	return nil
}

// GetKey handles GET /get?key=...
func (h *Handler) GetKey(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	query := GetQuery{Key: r.URL.Query().Get("key")}
	if err := validateStruct(&query); err != nil {
		return err
	}

	value, ok := h.gateway.GetValue(ctx, query.Key)
	if !ok {
		h.logger.InfoContext(ctx, "GetKey: key not found", "key", query.Key)
		writeJSON(w, http.StatusOK, KeyResponse{
			Status:  statusNotFound,
			Message: fmt.Sprintf("key '%s' not found", query.Key),
			Key:     query.Key,
		})
		return nil
	}

	h.logger.InfoContext(ctx, "GetKey: success", "key", query.Key)
	writeJSON(w, http.StatusOK, GetResponse{
		Status: statusSuccess,
		Key:    query.Key,
		Value:  value,
	})
	return nil
}

// IncrKey handles POST /incr
func (h *Handler) IncrKey(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var req KeyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	value, ok := h.gateway.Increment(ctx, req.Key)
	if !ok {
		return apperr.New(apperr.KindStoreOperation, "failed to increment counter")
	}

	h.logger.InfoContext(ctx, "IncrKey: success", "key", req.Key, "value", value)
	writeJSON(w, http.StatusOK, IncrResponse{
		Status:  statusSuccess,
		Key:     req.Key,
		Value:   value,
		Message: fmt.Sprintf("counter '%s' incremented to %d", req.Key, value),
	})
	return nil
}

// DeleteKey handles POST /delete
func (h *Handler) DeleteKey(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var req KeyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	if !h.gateway.DeleteKey(ctx, req.Key) {
		h.logger.InfoContext(ctx, "DeleteKey: key not found", "key", req.Key)
		writeJSON(w, http.StatusOK, KeyResponse{
			Status:  statusNotFound,
			Message: fmt.Sprintf("key '%s' not found", req.Key),
			Key:     req.Key,
		})
		return nil
	}

	h.logger.InfoContext(ctx, "DeleteKey: success", "key", req.Key)
	writeJSON(w, http.StatusOK, KeyResponse{
		Status:  statusSuccess,
		Message: fmt.Sprintf("key '%s' deleted", req.Key),
		Key:     req.Key,
	})
	return nil
}

// ListKeys handles GET /keys
func (h *Handler) ListKeys(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	keys := h.gateway.ListAllKeys(ctx)
	if keys == nil {
		keys = []string{}
	}

	h.logger.InfoContext(ctx, "ListKeys: success", "count", len(keys))
	writeJSON(w, http.StatusOK, KeysResponse{
		Status: statusSuccess,
		Count:  len(keys),
		Keys:   keys,
	})
	return nil
}
