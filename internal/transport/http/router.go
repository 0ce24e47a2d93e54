package httptransport

import (
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"regdesk/pkg/platform/httputil"
	"regdesk/pkg/platform/middleware/metadata"
	"regdesk/pkg/platform/middleware/request"
	"regdesk/pkg/platform/middleware/requesttime"
	"regdesk/pkg/validation"
)

// NotFoundMessage is returned for unknown routes and missing static files.
const NotFoundMessage = "找不到該資源"

// RouteRegistrar mounts a group of routes.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// RouterConfig carries everything the router mounts.
type RouterConfig struct {
	Logger         *slog.Logger
	Gatherer       prometheus.Gatherer
	RequestMetrics *request.Metrics
	Metadata       *metadata.Middleware
	RateLimit      func(http.Handler) http.Handler
	RequestTimeout time.Duration
	CORSOrigins    []string
	StaticDir      string
	Health         RouteRegistrar
	API            RouteRegistrar
}

// NewRouter wires the public endpoints with middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Metadata == nil {
		cfg.Metadata = metadata.NewMiddleware(nil)
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(cfg.Logger))
	r.Use(request.RequestID)
	r.Use(cfg.Metadata.Handler)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(cfg.Logger))
	r.Use(request.LatencyMiddleware(cfg.RequestMetrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "RateLimit-Limit", "RateLimit-Remaining", "RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.Health != nil {
		cfg.Health.Register(r)
	}
	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	if cfg.API != nil {
		r.Route("/api", func(api chi.Router) {
			if cfg.RateLimit != nil {
				api.Use(cfg.RateLimit)
			}
			api.Use(request.BodyLimit(validation.MaxBodySize))
			api.Use(request.ContentTypeJSON)
			api.Use(request.Timeout(cfg.RequestTimeout))
			cfg.API.Register(api)
		})
	}

	static := newStaticHandler(cfg.StaticDir)
	r.Get("/", static.ServeHTTP)
	r.Get("/*", static.ServeHTTP)
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	return r
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusNotFound, httputil.Envelope{
		Error: NotFoundMessage,
		Code:  "not_found",
	})
}

// staticHandler serves regular files under dir. "/" serves index.html.
// Anything that is not a regular file answers the JSON 404.
type staticHandler struct {
	root   fs.FS
	server http.Handler
}

func newStaticHandler(dir string) *staticHandler {
	if dir == "" {
		return &staticHandler{}
	}
	root := os.DirFS(dir)
	return &staticHandler{
		root:   root,
		server: http.FileServerFS(root),
	}
}

func (s *staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.root == nil {
		notFound(w, r)
		return
	}
	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" {
		name = "index.html"
	}
	info, err := fs.Stat(s.root, name)
	if err != nil || !info.Mode().IsRegular() {
		notFound(w, r)
		return
	}
	if name == "index.html" {
		http.ServeFileFS(w, r, s.root, name)
		return
	}
	s.server.ServeHTTP(w, r)
}
