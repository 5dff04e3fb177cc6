package api

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
)

//go:embed templates/index.html
var templateFS embed.FS

var homeTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// endpoint describes one route on the home page
type endpoint struct {
	Method      string
	Path        string
	Description string
}

var endpoints = []endpoint{
	{http.MethodPost, "/set", "Store a value under a key, with an optional TTL in seconds"},
	{http.MethodGet, "/get", "Read the value stored under a key"},
	{http.MethodPost, "/incr", "Increment an integer counter"},
	{http.MethodPost, "/delete", "Remove a key"},
	{http.MethodGet, "/keys", "List every key in the store"},
	{http.MethodGet, "/health", "Application and store status"},
}

// Home handles GET / with a static page describing the endpoints
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) error {
	data := struct {
		Name      string
		Version   string
		Endpoints []endpoint
	}{
		Name:      h.info.Name,
		Version:   h.info.Version,
		Endpoints: endpoints,
	}

	var buf bytes.Buffer
	if err := homeTemplate.Execute(&buf, data); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
	return nil
}
