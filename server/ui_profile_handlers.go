package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-taskmaster/api"
	"github.com/jrsteele09/go-taskmaster/internal/utils"
	"github.com/jrsteele09/go-taskmaster/tasks"
)

type ProfilePageData struct {
	Master tasks.Master
	Email  string
	Fields map[string]string
}

func (s *Server) ProfileHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("profile.html")

	return func(w http.ResponseWriter, r *http.Request) {
		p := page{Active: "profile", Title: "Profile"}

		master, err := clientFromContext(r.Context()).CurrentUser(r.Context())
		if err != nil {
			if s.sessionEnded(w, r, err) {
				return
			}
			p.Error, p.Status = api.Message(err), failureStatus(err)
		}
		s.renderPage(w, r, tmpl, p, ProfilePageData{Master: master})
	}
}

func (s *Server) ProfileEditGetHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("profile_edit.html")

	return func(w http.ResponseWriter, r *http.Request) {
		master, err := clientFromContext(r.Context()).CurrentUser(r.Context())
		if err != nil {
			if s.sessionEnded(w, r, err) {
				return
			}
			redirectWithError(w, r, RouteProfile, api.Message(err))
			return
		}
		s.renderPage(w, r, tmpl, page{Active: "profile", Title: "Edit profile"}, ProfilePageData{
			Master: master,
			Email:  master.Email,
		})
	}
}

// ProfileEditPostHandler sends only the fields that differ from the current profile.
func (s *Server) ProfileEditPostHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("profile_edit.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		ctx := r.Context()
		client := clientFromContext(ctx)
		email := strings.TrimSpace(r.FormValue("email"))

		current, err := client.CurrentUser(ctx)
		if err != nil {
			if s.sessionEnded(w, r, err) {
				return
			}
			redirectWithError(w, r, RouteProfile, api.Message(err))
			return
		}
		data := ProfilePageData{Master: current, Email: email}

		err = tasks.ValidateEmail(email)
		if err == nil {
			patch := tasks.MasterPatch{Email: utils.ChangedPtr(current.Email, email)}
			if patch.IsEmpty() {
				redirectWithNotice(w, r, RouteProfile, "No changes to save")
				return
			}
			_, err = client.UpdateCurrentUser(ctx, patch)
		}
		if err != nil {
			if s.sessionEnded(w, r, err) {
				return
			}
			msg, fields := formErrors(err)
			data.Fields = fields
			s.renderPage(w, r, tmpl, page{Active: "profile", Title: "Edit profile", Error: msg, Status: failureStatus(err)}, data)
			return
		}

		redirectWithNotice(w, r, RouteProfile, "Profile updated")
	}
}
