package devserver

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"tictactoe-client/internal/api"
)

const authorizeURL = "https://github.com/login/oauth/authorize?client_id=devserver"

func (s *Server) createGuest(w http.ResponseWriter, r *http.Request) {
	id := newID()
	token := newID()
	user := api.User{
		ID:       id,
		Username: "guest_" + strings.ToLower(id[len(id)-6:]),
		IsActive: true,
	}

	s.mu.Lock()
	s.users[id] = user
	s.tokens[token] = id
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	metricGuestsTotal.Add(1)
	log.Info().Str("user_id", id).Str("username", user.Username).Msg("devserver_guest_created")
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) authorize(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"authorization_url": authorizeURL})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(cookieName); err == nil {
		s.mu.Lock()
		delete(s.tokens, c.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) checkAuth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFromContext(r.Context()))
}
