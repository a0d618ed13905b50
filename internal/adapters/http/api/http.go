// Package api wires the HTTP routes of the roster service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/okian/rostr/internal/adapters/http/swagger"
	service "github.com/okian/rostr/internal/app"
	"github.com/okian/rostr/internal/auth"
	"github.com/okian/rostr/internal/domain/grading"
	"github.com/okian/rostr/internal/domain/model"
	"github.com/okian/rostr/internal/domain/recommend"
	"github.com/okian/rostr/internal/domain/roster"
	"github.com/okian/rostr/internal/domain/trade"
	"github.com/okian/rostr/pkg/logger"
)

const (
	maxBodyBytes   = 1 << 20
	requestTimeout = 30 * time.Second
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	StatsProvider

	SignUp(ctx context.Context, username, password string) (model.User, error)
	Login(ctx context.Context, username, password string) (service.Session, error)

	CreateTeam(ctx context.Context, userID, name string) (model.Team, error)
	TeamsByUser(ctx context.Context, userID string) ([]model.Team, error)
	DeleteTeam(ctx context.Context, userID, teamID string) error

	Players(ctx context.Context, teamID string) ([]model.Player, error)
	AddPlayer(ctx context.Context, userID, teamID string, np service.NewPlayer) (model.Player, error)
	RemovePlayer(ctx context.Context, userID, teamID, name string) error
	RegradeTeam(ctx context.Context, userID, teamID string) (service.RegradeResult, error)

	TeamGrades(ctx context.Context, teamID string) (roster.Summary, error)
	Lineup(ctx context.Context, teamID string) ([]roster.LineupEntry, error)
	RecommendPitchers(ctx context.Context, teamID string, season, topN int) ([]recommend.Recommendation, error)
	GradeScale() service.GradeScale
	Grade(name string, kPct, ip, era float64) grading.Report

	SearchPitchers(ctx context.Context, season int, name string) ([]service.PitcherSummary, error)
	PlayerYears(ctx context.Context, idfg string) (service.Years, error)
	EvaluateTrade(ctx context.Context, sideA, sideB []string, season int) (trade.Result, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps    Dependencies
	auth    *auth.Service
	limiter *ipLimiter
	origins []string
	logger  logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithCORSOrigins sets the allowed CORS origins. "*" allows any.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.origins = origins
		}
	}
}

// WithAuthRateLimit limits sign-up and login per client IP.
func WithAuthRateLimit(perMinute, burst int) Option {
	return func(s *Server) {
		if perMinute > 0 && burst > 0 {
			s.limiter = newIPLimiter(perMinute, burst)
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, authSvc *auth.Service, opts ...Option) *Server {
	s := &Server{
		deps:    deps,
		auth:    authSvc,
		limiter: newIPLimiter(30, 10),
		origins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("http")
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))
	r.Use(s.requestLogger, MetricsMiddleware)

	r.Get("/healthz", HandleHealth)
	r.Get("/stats", s.handleStats)
	swagger.Register(r)

	r.Route("/api", func(ar chi.Router) {
		ar.Group(func(pr chi.Router) {
			pr.Use(s.limiter.Middleware)
			pr.Post("/users", s.handleSignUp)
			pr.Post("/users/login", s.handleLogin)
		})

		ar.Get("/users/{userID}/teams", s.handleListTeams)
		ar.Get("/teams/{teamID}/players", s.handleListPlayers)
		ar.Get("/teams/{teamID}/grades", s.handleTeamGrades)
		ar.Get("/teams/{teamID}/recommend-lineup", s.handleLineup)
		ar.Get("/teams/{teamID}/recommend-pitchers", s.handleRecommendPitchers)
		ar.Get("/grade-scale", s.handleGradeScale)
		ar.Post("/grade", s.handleGrade)
		ar.Get("/search-pitcher", s.handleSearch)
		ar.Get("/get-player-years", s.handlePlayerYears)
		ar.Post("/trade/evaluate", s.handleTrade)

		ar.Group(func(pr chi.Router) {
			pr.Use(auth.Middleware(s.auth))
			pr.Post("/teams", s.handleCreateTeam)
			pr.Delete("/teams/{teamID}", s.handleDeleteTeam)
			pr.Post("/teams/{teamID}/players", s.handleAddPlayer)
			pr.Delete("/teams/{teamID}/players/{playerName}", s.handleRemovePlayer)
			pr.Post("/teams/{teamID}/regrade", s.handleRegrade)
		})
	})
	return r
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.GetStats(r.Context()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err as {code, message}. Unclassified errors are logged
// and reported without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.String("request_id", middleware.GetReqID(r.Context())),
			logger.Error(err))
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return NewKind(ErrBadRequest, "request body is required")
		}
		return WrapKind(ErrBadRequest, "invalid JSON body", err)
	}
	return nil
}

// flexString accepts a JSON string or number, for ids that clients send
// either way.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
