package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-taskmaster/api"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyClient stores the gateway for the requesting browser
const ContextKeyClient ContextKey = "api_client"

// BrowserClientMiddleware identifies the browser and puts its gateway in the request context.
func (s *Server) BrowserClientMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, err := s.clientFor(w, r)
		if err != nil {
			log.Err(err).Msg("Failed to start browser session")
			http.Error(w, "Failed to start browser session", http.StatusInternalServerError)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), ContextKeyClient, client)))
	}
}

// RequireSession sends browsers without a stored token pair to the login page.
// Must be chained after BrowserClientMiddleware.
func (s *Server) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := clientFromContext(r.Context())
		if client == nil || !client.Credentials().IsAuthenticated(r.Context()) {
			redirectSuccess(w, r, RouteLogin)
			return
		}
		next(w, r)
	}
}

func clientFromContext(ctx context.Context) *api.Client {
	client, _ := ctx.Value(ContextKeyClient).(*api.Client)
	return client
}

func isAuthenticated(r *http.Request) bool {
	client := clientFromContext(r.Context())
	return client != nil && client.Credentials().IsAuthenticated(r.Context())
}
