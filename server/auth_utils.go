package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-taskmaster/api"
	"github.com/jrsteele09/go-taskmaster/internal/errors"
)

// Navigator moves the browser somewhere else once its session can no longer be used.
type Navigator interface {
	ToLogin(w http.ResponseWriter, r *http.Request)
}

// LoginRedirect is the default Navigator.
type LoginRedirect struct{}

func (LoginRedirect) ToLogin(w http.ResponseWriter, r *http.Request) {
	redirectWithError(w, r, RouteLogin, api.Message(errors.ErrSessionExpired))
}

// sessionEnded hands terminal auth failures to the navigator and reports whether it did.
func (s *Server) sessionEnded(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, errors.ErrSessionExpired) {
		return false
	}
	s.navigator.ToLogin(w, r)
	return true
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError helper for htmx-aware error redirects
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	redirectSuccess(w, r, withQuery(path, "error", errorMsg))
}

func redirectWithNotice(w http.ResponseWriter, r *http.Request, path, notice string) {
	redirectSuccess(w, r, withQuery(path, "notice", notice))
}

func withQuery(path, key, value string) string {
	u, err := url.Parse(path)
	if err != nil {
		return path
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

// localPath returns next when it names a path on this site, otherwise fallback.
func localPath(next, fallback string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return fallback
	}
	return next
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
