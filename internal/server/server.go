/*
Package server implements the application's web surface.
It initializes the HTTP server, binds browsers to chat sessions with a
signed cookie, and streams replies over websockets.
*/
package server

import (
	"fmt"
	"net/http"
	"time"

	"NutriAssist/internal/chat"
	"NutriAssist/internal/config"
	"NutriAssist/internal/utility"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"
)

const (
	cookieName   = "nutriassist"
	sessionIDKey = "session_id"
)

// Server defines the configuration and dependencies for the HTTP service.
type Server struct {
	// port specifies the TCP port the server will listen on.
	port int

	// sessions holds every live chat session.
	sessions *chat.Registry

	// cookies maps a browser to its chat session ID.
	cookies *sessions.CookieStore
}

// New builds the application without starting a listener.
func New(cfg config.Config, registry *chat.Registry) *Server {
	secret := cfg.SessionSecret
	if secret == "" {
		generated, err := utility.GenerateSecureToken(32)
		if err != nil {
			log.Fatal().Err(err).Msg("could not generate a session secret")
		}
		secret = generated
		log.Warn().Msg("SESSION_SECRET not set, using a per-process secret")
	}

	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(0) // browser-session cookie
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = cfg.IsProduction()
	store.Options.SameSite = http.SameSiteLaxMode

	return &Server{
		port:     cfg.Port,
		sessions: registry,
		cookies:  store,
	}
}

// NewServer returns a configured *http.Server for the chat application.
func NewServer(cfg config.Config, registry *chat.Registry) *http.Server {
	app := New(cfg, registry)

	return &http.Server{
		Addr:        fmt.Sprintf(":%d", app.port),
		Handler:     app.RegisterRoutes(),
		IdleTimeout: time.Minute,
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: replies stream for as long as the model writes.
	}
}
