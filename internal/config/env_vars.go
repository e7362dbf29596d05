package config

import "fmt"

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

var _ EnvConfig = mainConfig{}

func (c mainConfig) GetPort() string {
	port := c.settings.Port
	if port == "" {
		port = "3000"
	}
	if port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (c mainConfig) GetAppName() string {
	if c.settings.AppName == "" {
		return "TaskMaster"
	}
	return c.settings.AppName
}

func (c mainConfig) GetEnv() string {
	if c.settings.Env == "" {
		return "DEV"
	}
	return c.settings.Env
}

func (c mainConfig) GetLogLevel() string {
	return c.settings.LogLevel
}
