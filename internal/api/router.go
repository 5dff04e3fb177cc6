package api

import (
	"net/http"

	"kvgateway/internal/apperr"
	"kvgateway/pkg/logger"
)

// Router holds the HTTP router and dependencies
type Router struct {
	handler *Handler
	logger  *logger.Logger
	mux     *http.ServeMux
	chain   http.Handler

	// allowed maps each known path to its method, for 405 answers
	allowed map[string]string
}

type route struct {
	method  string
	pattern string
	path    string
	fn      handlerFunc
}

// NewRouter creates a new Router with dependencies
func NewRouter(gw Gateway, l *logger.Logger, info AppInfo) *Router {
	rt := &Router{
		handler: NewHandler(gw, l, info),
		logger:  l,
		mux:     http.NewServeMux(),
		allowed: make(map[string]string),
	}

	for _, r := range rt.routes() {
		rt.mux.Handle(r.method+" "+r.pattern, handle(l, r.fn))
		rt.allowed[r.path] = r.method
	}
	rt.mux.HandleFunc("/", rt.fallback)

	rt.chain = rt.applyMiddleware(rt.mux)
	return rt
}

// routes lists every endpoint served by the gateway
func (rt *Router) routes() []route {
	h := rt.handler
	return []route{
		{http.MethodGet, "/{$}", "/", h.Home},
		{http.MethodGet, "/health", "/health", h.Health},
		{http.MethodPost, "/set", "/set", h.SetKey},
		{http.MethodGet, "/get", "/get", h.GetKey},
		{http.MethodPost, "/incr", "/incr", h.IncrKey},
		{http.MethodPost, "/delete", "/delete", h.DeleteKey},
		{http.MethodGet, "/keys", "/keys", h.ListKeys},
	}
}

// ServeHTTP implements http.Handler interface to route requests
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.chain.ServeHTTP(w, r)
}

// applyMiddleware applies all middleware in the correct order
func (rt *Router) applyMiddleware(handler http.Handler) http.Handler {
	// Apply middleware in reverse order (last applied is executed first)
	handler = RecoveryMiddleware(rt.logger)(handler)
	handler = LoggingMiddleware(rt.logger)(handler)
	handler = CORSMiddleware(handler)
	handler = RequestIDMiddleware(handler)
	return handler
}

// fallback answers requests no route matched: 405 for a known path used
// with the wrong method, 404 otherwise
func (rt *Router) fallback(w http.ResponseWriter, r *http.Request) {
	if method, ok := rt.allowed[r.URL.Path]; ok {
		w.Header().Set("Allow", method)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeAppError(w, r, rt.logger, apperr.New(apperr.KindNotFound, "endpoint not found"))
}

// SetupRoutes creates a complete HTTP handler with all routes and middleware
func SetupRoutes(gw Gateway, l *logger.Logger, info AppInfo) http.Handler {
	return NewRouter(gw, l, info)
}
