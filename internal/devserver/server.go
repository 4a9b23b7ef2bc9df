// Package devserver is an in-memory stand-in for the users, game and history
// services. It serves the same paths and the same game socket protocol so the
// client can be run and tested without the real deployment.
package devserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
	"github.com/gorilla/websocket"

	"tictactoe-client/internal/api"
	"tictactoe-client/internal/logging"
)

const cookieName = "tictactoe"

type Options struct {
	// HistoryStatus, when set to anything but 200, is returned by the history
	// endpoint instead of the stored games.
	HistoryStatus int
	// Logger receives request logs. Defaults to JSON on logging.Writer().
	Logger *slog.Logger
}

type Server struct {
	opts     Options
	router   *chi.Mux
	upgrader websocket.Upgrader

	mu      sync.Mutex
	users   map[string]api.User
	tokens  map[string]string
	games   map[string]*game
	history map[string][]api.HistoryGame
}

func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewJSONHandler(logging.Writer(), &slog.HandlerOptions{}))
	}
	s := &Server{
		opts:     opts,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		users:    map[string]api.User{},
		tokens:   map[string]string{},
		games:    map[string]*game{},
		history:  map[string][]api.HistoryGame{},
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Route("/users-service", func(r chi.Router) {
		r.Use(s.requestLogger())
		r.Get("/auth/create-guest", s.createGuest)
		r.Get("/auth/github/authorize", s.authorize)
		r.Get("/auth/logout", s.logout)
		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)
			r.Get("/auth/check-auth", s.checkAuth)
			r.Get("/users/me", s.me)
		})
	})

	r.Route("/game-service", func(r chi.Router) {
		// The socket route stays outside the request logger so the upgrade
		// sees the raw ResponseWriter.
		r.Get("/ws/game/{gameID}", s.handleSocket)
		r.Group(func(r chi.Router) {
			r.Use(s.requestLogger())
			r.Use(s.requireUser)
			r.Post("/game/create", s.createGame)
			r.Post("/game/join/{gameID}", s.joinGame)
			r.Get("/games/open", s.openGames)
		})
	})

	r.Route("/game-history", func(r chi.Router) {
		r.Use(s.requestLogger())
		r.Use(s.requireUser)
		r.Get("/games", s.listHistory)
	})
	return r
}

func (s *Server) requestLogger() func(http.Handler) http.Handler {
	return httplog.RequestLogger(s.opts.Logger, &httplog.Options{
		Level:              slog.LevelInfo,
		Schema:             httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
		LogRequestBody:     func(*http.Request) bool { return false },
		LogResponseBody:    func(*http.Request) bool { return false },
		LogRequestHeaders:  []string{},
		LogResponseHeaders: []string{},
		LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
			route := req.URL.Path
			if rc := chi.RouteContext(req.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			return []slog.Attr{
				slog.String("request_id", chimw.GetReqID(req.Context())),
				slog.String("method", req.Method),
				slog.String("route", route),
			}
		},
	})
}

type userContextKey struct{}

func userFromContext(ctx context.Context) api.User {
	user, _ := ctx.Value(userContextKey{}).(api.User)
	return user
}

func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.userFromRequest(r)
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey{}, user)))
	})
}

func (s *Server) userFromRequest(r *http.Request) (api.User, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return api.User{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.tokens[c.Value]
	if !ok {
		return api.User{}, false
	}
	user, ok := s.users[id]
	return user, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDetail answers in the services' error shape: {"detail": "..."}.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
