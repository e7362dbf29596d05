package server

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jrsteele09/go-taskmaster/api"
	"github.com/jrsteele09/go-taskmaster/credentials"
	"github.com/jrsteele09/go-taskmaster/internal/config"
	"github.com/jrsteele09/go-taskmaster/kvstore"
	"github.com/jrsteele09/go-taskmaster/server/loginsession"
	pkgerrors "github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// NowTimeFunc is the clock used for due date comparisons.
var NowTimeFunc = time.Now

type Server struct {
	env        string // Environment (e.g., "DEV", "PROD")
	mux        *http.ServeMux
	routes     []string
	config     config.Config
	store      kvstore.Repo
	browsers   *loginsession.Manager
	refresher  credentials.Refresher
	refreshes  singleflight.Group
	httpClient *http.Client
	metrics    *api.Metrics
	gatherer   prometheus.Gatherer
	navigator  Navigator
	layout     *template.Template
}

type ServerOption func(*Server)

// WithHTTPClient sets the client used to reach the remote service.
func WithHTTPClient(httpClient *http.Client) ServerOption {
	return func(s *Server) {
		s.httpClient = httpClient
	}
}

// WithMetrics records gateway metrics in m and serves g on /metrics.
func WithMetrics(m *api.Metrics, g prometheus.Gatherer) ServerOption {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

func WithNavigator(n Navigator) ServerOption {
	return func(s *Server) {
		s.navigator = n
	}
}

// New builds the web frontend. store holds the credentials of every browser, each under its own key prefix.
func New(cfg config.Config, store kvstore.Repo, options ...ServerOption) (*Server, error) {
	if cfg == nil {
		return nil, pkgerrors.New("[server.New] config is required")
	}
	if store == nil {
		return nil, pkgerrors.New("[server.New] store is required")
	}

	browsers, err := loginsession.NewManager(cfg)
	if err != nil {
		return nil, fmt.Errorf("[server.New] failed to create browser sessions: %w", err)
	}

	layout, err := ParseTemplate("layout.html")
	if err != nil {
		return nil, fmt.Errorf("[server.New] failed to parse layout template: %w", err)
	}

	s := &Server{
		env:       cfg.GetEnv(),
		mux:       http.NewServeMux(),
		config:    cfg,
		store:     store,
		browsers:  browsers,
		navigator: LoginRedirect{},
		layout:    layout,
	}
	for _, option := range options {
		option(s)
	}

	if s.httpClient == nil {
		s.httpClient = &http.Client{Timeout: cfg.GetAPITimeout()}
	}
	if s.metrics == nil {
		registry := prometheus.NewRegistry()
		if s.metrics, err = api.NewMetrics(registry); err != nil {
			return nil, fmt.Errorf("[server.New] failed to register metrics: %w", err)
		}
		s.gatherer = registry
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	s.refresher = api.NewTokenRefresher(cfg, s.httpClient, api.WithRefreshMetrics(s.metrics))

	s.initRoutes()
	s.logRoutes()

	return s, nil
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

// clientFor builds the gateway for the browser making r. Every browser gets its own token keys,
// and concurrent requests from one browser share a single refresh.
func (s *Server) clientFor(w http.ResponseWriter, r *http.Request) (*api.Client, error) {
	browserID, err := s.browsers.BrowserID(w, r)
	if err != nil {
		return nil, err
	}

	creds, err := credentials.New(
		kvstore.Scoped(s.store, "browser:"+browserID),
		s.refresher,
		credentials.WithLogger(log.Logger),
		credentials.WithSharedRefresh(&s.refreshes, browserID),
	)
	if err != nil {
		return nil, err
	}

	return api.New(s.config, creds,
		api.WithHTTPClient(s.httpClient),
		api.WithLogger(log.Logger),
		api.WithMetrics(s.metrics),
	)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	c, ok := methodColors[method]
	if !ok {
		c = color.New(color.FgHiBlack)
	}
	log.Info().Msgf("[%s] %s", c.Sprintf(" %-7s", method), path)
}
