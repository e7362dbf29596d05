package config

import "time"

type WebConfig interface {
	GetSessionKey() []byte
	GetSessionMaxAge() time.Duration
	GetSecureCookies() bool
}

type WebSettings struct {
	SessionKey    string        `yaml:"session_key" env:"SESSION_KEY" env-default:"dev-only-session-key-change-me!!"`
	SessionMaxAge time.Duration `yaml:"session_max_age" env:"SESSION_MAX_AGE" env-default:"720h"`
	SecureCookies bool          `yaml:"secure_cookies" env:"SECURE_COOKIES" env-default:"false"`
}

var _ WebConfig = mainConfig{}

func (c mainConfig) GetSessionKey() []byte {
	return []byte(c.settings.Web.SessionKey)
}

func (c mainConfig) GetSessionMaxAge() time.Duration {
	if c.settings.Web.SessionMaxAge <= 0 {
		return 30 * 24 * time.Hour
	}
	return c.settings.Web.SessionMaxAge
}

func (c mainConfig) GetSecureCookies() bool {
	return c.settings.Web.SecureCookies
}
