// Package server exposes the gate and the overlaid registries as a JSON
// API.
package server

import (
	"net/http"

	"github.com/krystark/portal-gate/credentials"
	"github.com/krystark/portal-gate/internal/config"
	"github.com/krystark/portal-gate/registry"
	"github.com/krystark/portal-gate/session"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type Server struct {
	env      string
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	gate     *session.Gate
	store    *credentials.Store
	nav      *registry.Nav
	routeReg *registry.Routes
	log      zerolog.Logger
}

func New(
	cfg config.Config,
	gate *session.Gate,
	store *credentials.Store,
	nav *registry.Nav,
	routeReg *registry.Routes,
	log zerolog.Logger,
) *Server {
	s := &Server{
		env:      cfg.GetEnv(),
		mux:      http.NewServeMux(),
		config:   cfg,
		gate:     gate,
		store:    store,
		nav:      nav,
		routeReg: routeReg,
		log:      log.With().Str("component", "server").Logger(),
	}
	s.initRoutes()
	s.logRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET /api/session", ChainMiddleware(s.SessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET /api/nav", ChainMiddleware(s.NavHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET /api/routes", ChainMiddleware(s.RoutesHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST /api/token", ChainMiddleware(s.TokenHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST /api/logout", ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS /api/", ChainMiddleware(s.preflightHandler(), s.CorsMiddleware))

	s.RegisterRouteFunc("GET /healthz", s.HealthHandler())
	s.RegisterRouteHandler("GET /metrics", promhttp.Handler())
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		s.log.Debug().Str("route", route).Msg("registered")
	}
}
