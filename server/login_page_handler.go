package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-taskmaster/tasks"
	"github.com/rs/zerolog/log"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	Email  string // Preserve email on error
	Fields map[string]string
}

// LoginPageHandler displays the login page (GET /login)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("login.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if isAuthenticated(r) {
			redirectSuccess(w, r, RouteHome)
			return
		}
		s.renderPage(w, r, tmpl, page{Active: "login", Title: "Sign in"}, LoginPageData{
			Email: r.URL.Query().Get("email"),
		})
	}
}

// LoginSubmissionHandler processes the login form submission
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("login.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")
		data := LoginPageData{Email: email}

		err := tasks.ValidateCredentials(email, password)
		if err == nil {
			err = clientFromContext(r.Context()).SignIn(r.Context(), email, password)
		}
		if err != nil {
			msg, fields := formErrors(err)
			data.Fields = fields
			s.renderPage(w, r, tmpl, page{Active: "login", Title: "Sign in", Error: msg, Status: failureStatus(err)}, data)
			return
		}

		redirectSuccess(w, r, RouteHome)
	}
}

// LogoutHandler signs the browser out. Local tokens are always dropped, whatever the service says.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := clientFromContext(r.Context()).SignOut(r.Context()); err != nil {
			log.Err(err).Msg("Failed to clear browser tokens")
		}
		redirectWithNotice(w, r, RouteLogin, "You have been signed out")
	}
}
