package server

import "strconv"

// Route path constants
const (
	RouteIndex = "/"

	// Account
	RouteLogin                = "/login"
	RouteLogout               = "/logout"
	RouteRegister             = "/register"
	RouteResetPassword        = "/reset-password"
	RouteResetPasswordConfirm = "/reset-password/confirm"
	RouteProfile              = "/profile"
	RouteProfileEdit          = "/profile/edit"

	// Tasks
	RouteHome           = "/home"
	RouteTasks          = "/tasks"
	RouteTasksCompleted = "/tasks/completed"
	RouteTaskNew        = "/tasks/new"
	RouteTask           = "/tasks/{id}"
	RouteTaskStatus     = "/tasks/{id}/status"
	RouteTaskDelete     = "/tasks/{id}/delete"

	// Operations
	RouteLivez   = "/livez"
	RouteMetrics = "/metrics"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
)

func taskPath(id int64) string {
	return RouteTasks + "/" + strconv.FormatInt(id, 10)
}
