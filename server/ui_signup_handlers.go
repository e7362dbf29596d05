package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-taskmaster/api"
	"github.com/jrsteele09/go-taskmaster/internal/errors"
	"github.com/jrsteele09/go-taskmaster/tasks"
	"github.com/rs/zerolog/log"
)

type SignupPageData struct {
	Email  string
	Fields map[string]string
}

type ForgotPasswordPageData struct {
	Email  string
	Sent   bool
	Fields map[string]string
}

type ResetPasswordPageData struct {
	UID    string
	Token  string
	Fields map[string]string
}

const passwordResetSent = "If an account exists for that email, a reset link is on its way."

func (s *Server) SignupGetHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("register.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if isAuthenticated(r) {
			redirectSuccess(w, r, RouteHome)
			return
		}
		s.renderPage(w, r, tmpl, page{Active: "register", Title: "Create account"}, SignupPageData{})
	}
}

// SignupPostHandler registers the account then signs straight in.
func (s *Server) SignupPostHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("register.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")
		data := SignupPageData{Email: email}

		err := tasks.ValidateRegistration(email, password, r.FormValue("password_confirm"))
		if err == nil {
			_, err = clientFromContext(r.Context()).SignUp(r.Context(), email, password)
		}

		switch {
		case err == nil:
			redirectSuccess(w, r, RouteHome)
		case errors.Is(err, errors.ErrSignInAfterSignUp):
			log.Warn().Err(err).Msg("Account created but sign in failed")
			redirectWithError(w, r, withQuery(RouteLogin, "email", email), api.Message(err))
		default:
			msg, fields := formErrors(err)
			data.Fields = fields
			s.renderPage(w, r, tmpl, page{Active: "register", Title: "Create account", Error: msg, Status: failureStatus(err)}, data)
		}
	}
}

func (s *Server) ForgotPasswordGetHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("reset_password.html")

	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPage(w, r, tmpl, page{Title: "Reset password"}, ForgotPasswordPageData{})
	}
}

func (s *Server) ForgotPasswordPostHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("reset_password.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		email := strings.TrimSpace(r.FormValue("email"))
		data := ForgotPasswordPageData{Email: email}

		err := tasks.ValidateEmail(email)
		var ack api.Ack
		if err == nil {
			ack, err = clientFromContext(r.Context()).RequestPasswordReset(r.Context(), email)
		}
		if err != nil {
			msg, fields := formErrors(err)
			data.Fields = fields
			s.renderPage(w, r, tmpl, page{Title: "Reset password", Error: msg, Status: failureStatus(err)}, data)
			return
		}

		notice := ack.Detail
		if notice == "" {
			notice = passwordResetSent
		}
		data.Sent = true
		s.renderPage(w, r, tmpl, page{Title: "Reset password", Notice: notice}, data)
	}
}

// ResetPasswordGetHandler shows the new password form for the uid and token carried by the emailed link.
func (s *Server) ResetPasswordGetHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("reset_password_confirm.html")

	return func(w http.ResponseWriter, r *http.Request) {
		data := ResetPasswordPageData{
			UID:   r.URL.Query().Get("uid"),
			Token: r.URL.Query().Get("token"),
		}
		p := page{Title: "Choose a new password"}
		if data.UID == "" || data.Token == "" {
			p.Error = "This reset link is invalid or incomplete"
			p.Status = http.StatusBadRequest
		}
		s.renderPage(w, r, tmpl, p, data)
	}
}

func (s *Server) ResetPasswordPostHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("reset_password_confirm.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		req := api.PasswordResetConfirmRequest{
			UID:                r.FormValue("uid"),
			Token:              r.FormValue("token"),
			NewPassword:        r.FormValue("new_password"),
			NewPasswordConfirm: r.FormValue("new_password_confirm"),
		}
		data := ResetPasswordPageData{UID: req.UID, Token: req.Token}

		err := tasks.ValidatePasswordReset(req.UID, req.Token, req.NewPassword, req.NewPasswordConfirm)
		if err == nil {
			_, err = clientFromContext(r.Context()).ConfirmPasswordReset(r.Context(), req)
		}
		if err != nil {
			msg, fields := formErrors(err)
			data.Fields = fields
			s.renderPage(w, r, tmpl, page{Title: "Choose a new password", Error: msg, Status: failureStatus(err)}, data)
			return
		}

		redirectWithNotice(w, r, RouteLogin, "Your password has been reset, please sign in")
	}
}
