package config

import (
	"strconv"
	"strings"
	"time"
)

type APIConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
	GetRoutes() Routes
}

type APISettings struct {
	BaseURL string        `yaml:"base_url" env:"API_BASE_URL" env-default:"http://127.0.0.1:8000"`
	Timeout time.Duration `yaml:"timeout" env:"API_TIMEOUT" env-default:"15s"`
	Routes  Routes        `yaml:"routes"`
}

// Routes are the remote service paths. Task holds an {id} placeholder.
type Routes struct {
	Login                string `yaml:"login" env:"API_ROUTE_LOGIN" env-default:"/login"`
	Register             string `yaml:"register" env:"API_ROUTE_REGISTER" env-default:"/register"`
	Logout               string `yaml:"logout" env:"API_ROUTE_LOGOUT" env-default:"/logout"`
	Refresh              string `yaml:"refresh" env:"API_ROUTE_REFRESH" env-default:"/refresh"`
	PasswordReset        string `yaml:"password_reset" env:"API_ROUTE_PASSWORD_RESET" env-default:"/password-reset"`
	PasswordResetConfirm string `yaml:"password_reset_confirm" env:"API_ROUTE_PASSWORD_RESET_CONFIRM" env-default:"/password-reset/confirm"`
	CurrentUser          string `yaml:"current_user" env:"API_ROUTE_CURRENT_USER" env-default:"/current-user"`
	Tasks                string `yaml:"tasks" env:"API_ROUTE_TASKS" env-default:"/tasks"`
	Task                 string `yaml:"task" env:"API_ROUTE_TASK" env-default:"/tasks/{id}"`
}

// DefaultRoutes mirrors the env-default tags above.
func DefaultRoutes() Routes {
	return Routes{
		Login:                "/login",
		Register:             "/register",
		Logout:               "/logout",
		Refresh:              "/refresh",
		PasswordReset:        "/password-reset",
		PasswordResetConfirm: "/password-reset/confirm",
		CurrentUser:          "/current-user",
		Tasks:                "/tasks",
		Task:                 "/tasks/{id}",
	}
}

// TaskPath expands the task route for id.
func (r Routes) TaskPath(id int64) string {
	return strings.Replace(r.Task, "{id}", strconv.FormatInt(id, 10), 1)
}

var _ APIConfig = mainConfig{}

func (c mainConfig) GetAPIBaseURL() string {
	return strings.TrimRight(c.settings.API.BaseURL, "/")
}

func (c mainConfig) GetAPITimeout() time.Duration {
	return c.settings.API.Timeout
}

func (c mainConfig) GetRoutes() Routes {
	routes := c.settings.API.Routes
	defaults := DefaultRoutes()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&routes.Login, defaults.Login)
	fill(&routes.Register, defaults.Register)
	fill(&routes.Logout, defaults.Logout)
	fill(&routes.Refresh, defaults.Refresh)
	fill(&routes.PasswordReset, defaults.PasswordReset)
	fill(&routes.PasswordResetConfirm, defaults.PasswordResetConfirm)
	fill(&routes.CurrentUser, defaults.CurrentUser)
	fill(&routes.Tasks, defaults.Tasks)
	fill(&routes.Task, defaults.Task)
	return routes
}
