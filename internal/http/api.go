package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/cors"

	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/internal/media"
	"github.com/goliatone/go-portfolio/internal/projects"
	"github.com/goliatone/go-portfolio/internal/showcase"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

// DefaultMaxMemory is the multipart memory budget before files spill to disk.
const DefaultMaxMemory int64 = 32 << 20

// API registers the public portfolio endpoints.
type API struct {
	basePath    string
	projects    projects.Service
	uploads     media.Service
	markdown    interfaces.MarkdownRenderer
	showcase    *showcase.Service
	logger      interfaces.Logger
	staticDir   string
	corsOrigins []string
	maxMemory   int64
}

// Option mutates the API configuration.
type Option func(*API)

// NewAPI constructs an API instance.
func NewAPI(opts ...Option) *API {
	api := &API{
		basePath:    "/api",
		logger:      logging.NoOp(),
		corsOrigins: []string{"*"},
		maxMemory:   DefaultMaxMemory,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the base API path (defaults to "/api").
func WithBasePath(path string) Option {
	return func(api *API) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithProjectService wires the project service.
func WithProjectService(service projects.Service) Option {
	return func(api *API) {
		api.projects = service
	}
}

// WithUploadService wires multipart upload handling and /uploads/ serving.
func WithUploadService(service media.Service) Option {
	return func(api *API) {
		api.uploads = service
	}
}

// WithMarkdownRenderer wires the renderer behind the preview endpoint.
func WithMarkdownRenderer(renderer interfaces.MarkdownRenderer) Option {
	return func(api *API) {
		api.markdown = renderer
	}
}

// WithShowcaseService wires card and detail views.
func WithShowcaseService(service *showcase.Service) Option {
	return func(api *API) {
		api.showcase = service
	}
}

// WithLogger sets the logger used by the request middleware and handlers.
func WithLogger(logger interfaces.Logger) Option {
	return func(api *API) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// WithStaticDir serves dir at "/". Empty disables static serving.
func WithStaticDir(dir string) Option {
	return func(api *API) {
		api.staticDir = strings.TrimSpace(dir)
	}
}

// WithCORSOrigins replaces the allowed origins.
func WithCORSOrigins(origins []string) Option {
	return func(api *API) {
		if len(origins) > 0 {
			api.corsOrigins = append([]string(nil), origins...)
		}
	}
}

// WithMaxMemory sets the multipart memory budget.
func WithMaxMemory(limit int64) Option {
	return func(api *API) {
		if limit > 0 {
			api.maxMemory = limit
		}
	}
}

// Register attaches the API endpoints to the provided mux.
func (api *API) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: api is nil")
	}

	base := joinPath(api.basePath, "")

	mux.HandleFunc("GET "+joinPath(base, "health"), api.handleHealth)
	api.registerProjectRoutes(mux, base)
	api.registerMarkdownRoutes(mux, base)
	api.registerShowcaseRoutes(mux, base)

	if api.uploads != nil {
		prefix := "/" + media.PublicPrefix + "/"
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(api.uploads.Dir()))))
	}
	if api.staticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(api.staticDir)))
	}
	return nil
}

// Handler returns a mux with every route registered, wrapped with CORS and
// request logging.
func (api *API) Handler() (http.Handler, error) {
	mux := http.NewServeMux()
	if err := api.Register(mux); err != nil {
		return nil, err
	}
	c := cors.New(cors.Options{
		AllowedOrigins: api.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return RequestLogger(api.logger)(c.Handler(mux)), nil
}

func (api *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Server is running",
	})
}
