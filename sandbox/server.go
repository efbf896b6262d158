// Package sandbox is a local stand-in for the banking backend. It serves the same API
// from memory so the client can be exercised end to end, including access token
// expiry and refresh.
package sandbox

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-bank-client/internal/config"
	"github.com/jrsteele09/go-bank-client/ledger"
	"github.com/jrsteele09/go-bank-client/sessions"
	"github.com/jrsteele09/go-bank-client/token"
	"github.com/jrsteele09/go-bank-client/token/jwt"
	"github.com/jrsteele09/go-bank-client/token/refresh"
	refreshrepofake "github.com/jrsteele09/go-bank-client/token/refresh/repofake"
	"github.com/jrsteele09/go-bank-client/users"
	fakeuserrepo "github.com/jrsteele09/go-bank-client/users/repofake"
	"github.com/rs/zerolog/log"
)

// Repos are the stores behind the sandbox.
type Repos struct {
	Users         users.UserRepo
	RefreshTokens refresh.Repo
	Sessions      sessions.Repo
}

// InMemoryRepos returns empty in-memory stores.
func InMemoryRepos() Repos {
	return Repos{
		Users:         fakeuserrepo.NewFakeUserRepo(),
		RefreshTokens: refreshrepofake.NewFakeRefreshTokenRepo(),
		Sessions:      sessions.NewInMemoryRepo(),
	}
}

type Server struct {
	env     string
	mux     *http.ServeMux
	handler http.HandlerFunc
	routes  []string
	config  config.Config
	repos   Repos
	ledger  *ledger.Ledger
	mailer  Mailer

	tokens    *token.Manager
	inspector *jwt.Inspector
	otp       *sessions.Issuer
}

type Option func(*Server)

// WithMailer replaces the default mailer, which only logs.
func WithMailer(m Mailer) Option {
	return func(s *Server) {
		s.mailer = m
	}
}

func WithLedger(l *ledger.Ledger) Option {
	return func(s *Server) {
		s.ledger = l
	}
}

func New(cfg config.Config, repos Repos, opts ...Option) (*Server, error) {
	signer := token.NewHMACSigner(cfg.GetTokenSecret())
	revoked := token.NewDenylist()

	s := &Server{
		env:       cfg.GetEnv(),
		mux:       http.NewServeMux(),
		config:    cfg,
		repos:     repos,
		ledger:    ledger.New(),
		mailer:    logMailer{},
		tokens:    token.New(jwt.NewCreator(cfg, signer), refresh.NewManager(repos.RefreshTokens, cfg), repos.Users, revoked),
		inspector: jwt.NewInspector(signer, revoked),
		otp:       sessions.NewIssuer(repos.Sessions, cfg.GetOTPLength(), cfg.GetOTPExpiry()),
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.GetSeedUsers() {
		if err := s.InitialiseSystem(); err != nil {
			return nil, fmt.Errorf("[sandbox.New] failed to initialise the system: %w", err)
		}
	}

	s.initRoutes()
	s.logRoutes()
	s.handler = ChainMiddleware(s.mux.ServeHTTP, s.RequestIDMiddleware, s.LoggingMiddleware, s.RecoverMiddleware, s.CorsMiddleware)
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler(w, r)
}

// Ledger exposes the bank state, for seeding and inspection.
func (s *Server) Ledger() *ledger.Ledger {
	return s.ledger
}

// RegisterRoute mounts handler at method and path under APIPrefix. Paths match exactly.
func (s *Server) RegisterRoute(method, path string, handler http.HandlerFunc) {
	pattern := method + " " + APIPrefix + path
	if strings.HasSuffix(path, "/") {
		pattern += "{$}"
	}
	s.routes = append(s.routes, method+" "+APIPrefix+path)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		method, path, _ := strings.Cut(route, " ")
		log.Debug().Msgf("[%-16s] %s", colouredMethod(method), path)
	}
}
