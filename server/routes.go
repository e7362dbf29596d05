package server

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteIndex+"{$}", ChainMiddleware(s.IndexHandler(), s.PageMiddleware()...))

	// ACCOUNT
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.PageMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteRegister, ChainMiddleware(s.SignupGetHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteRegister, ChainMiddleware(s.SignupPostHandler(), s.PageMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteResetPassword, ChainMiddleware(s.ForgotPasswordGetHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteResetPassword, ChainMiddleware(s.ForgotPasswordPostHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteResetPasswordConfirm, ChainMiddleware(s.ResetPasswordGetHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteResetPasswordConfirm, ChainMiddleware(s.ResetPasswordPostHandler(), s.PageMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteProfile, ChainMiddleware(s.ProfileHandler(), s.PageMiddleware(s.RequireSession)...))
	s.RegisterRouteHandler("GET "+RouteProfileEdit, ChainMiddleware(s.ProfileEditGetHandler(), s.PageMiddleware(s.RequireSession)...))
	s.RegisterRouteHandler("POST "+RouteProfileEdit, ChainMiddleware(s.ProfileEditPostHandler(), s.PageMiddleware(s.RequireSession)...))

	// TASKS (require a signed in browser)
	s.RegisterRouteHandler("GET "+RouteHome, ChainMiddleware(s.DashboardHandler(), s.PageMiddleware(s.RequireSession)...))
	s.RegisterRouteHandler("GET "+RouteTasks, ChainMiddleware(s.TaskListHandler(), s.PageMiddleware(s.RequireSession)...))
	s.RegisterRouteHandler("GET "+RouteTasksCompleted, ChainMiddleware(s.CompletedTasksHandler(), s.PageMiddleware(s.RequireSession)...))
	s.RegisterRouteHandler("GET "+RouteTaskNew, ChainMiddleware(s.NewTaskGetHandler(), s.PageMiddleware(s.RequireSession)...))
	s.RegisterRouteHandler("POST "+RouteTaskNew, ChainMiddleware(s.NewTaskPostHandler(), s.PageMiddleware(s.RequireSession)...))
	s.RegisterRouteHandler("GET "+RouteTask, ChainMiddleware(s.TaskDetailGetHandler(), s.PageMiddleware(s.RequireSession)...))
	s.RegisterRouteHandler("POST "+RouteTask, ChainMiddleware(s.TaskDetailPostHandler(), s.PageMiddleware(s.RequireSession)...))
	s.RegisterRouteHandler("POST "+RouteTaskStatus, ChainMiddleware(s.TaskStatusHandler(), s.PageMiddleware(s.RequireSession)...))
	s.RegisterRouteHandler("POST "+RouteTaskDelete, ChainMiddleware(s.TaskDeleteHandler(), s.PageMiddleware(s.RequireSession)...))

	// OPERATIONS
	s.RegisterRouteFunc("GET "+RouteLivez, s.LivezHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, s.MetricsHandler())

	s.RegisterRouteHandler("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.HTMLMiddleWare(s.CacheMiddleware)...))
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := strings.TrimPrefix(r.URL.Path, "/")
		if filePath == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		asset, err := loadStaticAsset(filePath)
		if err != nil {
			s.logError(r.Method, filePath, err)
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		asset.serve(w, r)
	}
}

func (s *Server) logError(method, path string, err error) {
	if s.env != "DEV" {
		log.Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return
	}
	c, ok := methodColors[method]
	if !ok {
		c = errorColor
	}
	log.Info().Msgf("[%s] %s %s", c.Sprintf(" %-7s", method), path, errorColor.Sprint(err.Error()))
}
