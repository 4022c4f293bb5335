package server

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/inconshreveable/log15"

	"github.com/goliatone/go-formaction/internal/admin"
	"github.com/goliatone/go-formaction/internal/config"
	"github.com/goliatone/go-formaction/internal/i18n"
	"github.com/goliatone/go-formaction/internal/view"
	"github.com/goliatone/go-formaction/pkg/tagcache"
)

// Deps collects the collaborators of the HTTP server.
type Deps struct {
	Config       *config.Config
	Actions      *admin.Actions
	Store        *admin.MemoryStore
	Cache        *tagcache.Cache
	View         *view.Engine
	Translations *i18n.Translations
	Logger       log15.Logger
}

type Server struct {
	cfg     *config.Config
	actions *admin.Actions
	store   *admin.MemoryStore
	cache   *tagcache.Cache
	view    *view.Engine
	tr      *i18n.Translations
	logger  log15.Logger
}

func NewServer(deps Deps) (*Server, error) {
	switch {
	case deps.Config == nil:
		return nil, errors.New("server: config is required")
	case deps.Actions == nil:
		return nil, errors.New("server: actions are required")
	case deps.Store == nil:
		return nil, errors.New("server: store is required")
	case deps.Cache == nil:
		return nil, errors.New("server: cache is required")
	case deps.View == nil:
		return nil, errors.New("server: view engine is required")
	case deps.Translations == nil:
		return nil, errors.New("server: translations are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = log15.New("module", "server")
	}
	return &Server{
		cfg:     deps.Config,
		actions: deps.Actions,
		store:   deps.Store,
		cache:   deps.Cache,
		view:    deps.View,
		tr:      deps.Translations,
		logger:  logger,
	}, nil
}

func (s *Server) Route(r *mux.Router) {
	r.Use(WithRequestLogging(s.logger))
	r.Use(WithRateLimit(NewLimiter(s.cfg.RateLimitRPS, s.cfg.RateLimitBurst), http.HandlerFunc(s.tooManyRequests)))

	// Health
	r.HandleFunc("/healthz", s.GetHealth).Methods(http.MethodGet)

	// Login
	r.HandleFunc("/login", s.GetLogin).Methods(http.MethodGet)
	r.HandleFunc("/login", s.PostLogin).Methods(http.MethodPost)

	// Admins
	r.HandleFunc("/admins", s.GetAdmins).Methods(http.MethodGet)
	r.HandleFunc("/admins", s.PostAdmins).Methods(http.MethodPost)
}

func NewHandler(deps Deps) (http.Handler, error) {
	s, err := NewServer(deps)
	if err != nil {
		return nil, err
	}
	r := mux.NewRouter()
	s.Route(r)
	return r, nil
}
