package server

import (
	"net/http"
)

// IndexHandler renders the landing page, or sends signed in browsers to their dashboard
func (s *Server) IndexHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if isAuthenticated(r) {
			redirectSuccess(w, r, RouteHome)
			return
		}
		s.renderPage(w, r, tmpl, page{Title: "Welcome"}, map[string]interface{}{
			"AppName": s.config.GetAppName(),
		})
	}
}
