package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"gopkg.in/yaml.v3"

	"github.com/sagarc03/switchyard"
)

// CORSConfig configures the cors middleware on the outer router.
type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled" yaml:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins" yaml:"allowed_origins,omitempty"`
	AllowedMethods   []string `mapstructure:"allowed_methods" yaml:"allowed_methods,omitempty"`
	AllowedHeaders   []string `mapstructure:"allowed_headers" yaml:"allowed_headers,omitempty"`
	ExposedHeaders   []string `mapstructure:"exposed_headers" yaml:"exposed_headers,omitempty"`
	AllowCredentials bool     `mapstructure:"allow_credentials" yaml:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age" yaml:"max_age" validate:"min=0"`
}

// DocsConfig controls the generated API documents.
type DocsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Title   string `mapstructure:"title" yaml:"title"`
	Version string `mapstructure:"version" yaml:"version"`
}

type RouterConfig struct {
	CORS CORSConfig
	Docs DocsConfig
}

// RouteInfo is one entry of the /_/routes listing.
type RouteInfo struct {
	Method   string   `json:"method"`
	Pattern  string   `json:"pattern"`
	Params   []string `json:"params,omitempty"`
	Handlers int      `json:"handlers"`
}

// NewRouter returns the outer HTTP handler. Operational endpoints live under
// /_/ and /api-docs; every other request goes to adapter.
func NewRouter(cfg RouterConfig, adapter http.Handler, reg *switchyard.Registry) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	if cfg.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowedMethods:   cfg.CORS.AllowedMethods,
			AllowedHeaders:   cfg.CORS.AllowedHeaders,
			ExposedHeaders:   cfg.CORS.ExposedHeaders,
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           cfg.CORS.MaxAge,
		}))
	}

	r.Get("/_/health", func(w http.ResponseWriter, _ *http.Request) {
		_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/_/routes", func(w http.ResponseWriter, _ *http.Request) {
		_ = WriteJSON(w, http.StatusOK, RouteTable(reg))
	})

	if cfg.Docs.Enabled {
		info := Info{Title: cfg.Docs.Title, Version: cfg.Docs.Version}

		r.Get("/api-docs", func(w http.ResponseWriter, _ *http.Request) {
			_ = WriteJSON(w, http.StatusOK, OpenAPI(reg, info))
		})

		r.Get("/api-docs.yaml", func(w http.ResponseWriter, _ *http.Request) {
			out, err := yaml.Marshal(OpenAPI(reg, info))
			if err != nil {
				HandleError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/yaml")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(out)
		})
	}

	r.Handle("/*", adapter)

	return r
}

// RouteTable lists the registered routes in registration order.
func RouteTable(reg *switchyard.Registry) []RouteInfo {
	routes := reg.Routes()
	out := make([]RouteInfo, 0, len(routes))
	for _, route := range routes {
		out = append(out, RouteInfo{
			Method:   string(route.Method),
			Pattern:  route.Pattern.String(),
			Params:   route.Pattern.Params(),
			Handlers: len(route.Handlers),
		})
	}
	return out
}
