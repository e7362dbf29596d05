// Package loginsession identifies browsers with a signed cookie. The cookie carries only a random
// browser id; tokens for that browser live server side under the id.
package loginsession

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/jrsteele09/go-taskmaster/internal/config"
	pkgerrors "github.com/pkg/errors"
)

const (
	CookieName   = "taskmaster_browser"
	browserIDKey = "browser_id"

	minKeyLength = 32
)

type Manager struct {
	store sessions.Store
}

func NewManager(cfg config.WebConfig) (*Manager, error) {
	key := cfg.GetSessionKey()
	if len(key) < minKeyLength {
		return nil, pkgerrors.Errorf("[loginsession.NewManager] session key must be at least %d bytes", minKeyLength)
	}

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.GetSessionMaxAge().Seconds()),
		HttpOnly: true,
		Secure:   cfg.GetSecureCookies(),
		SameSite: http.SameSiteLaxMode,
	}
	return NewManagerWithStore(store), nil
}

func NewManagerWithStore(store sessions.Store) *Manager {
	return &Manager{store: store}
}

// BrowserID returns the id carried by r's cookie, issuing a new one when the cookie is absent
// or cannot be decoded. It must run before anything is written to w.
func (m *Manager) BrowserID(w http.ResponseWriter, r *http.Request) (string, error) {
	// A cookie that fails to decode still yields a fresh session.
	session, _ := m.store.Get(r, CookieName)
	if session == nil {
		return "", pkgerrors.New("[loginsession.BrowserID] no session")
	}

	if id, ok := session.Values[browserIDKey].(string); ok && id != "" {
		return id, nil
	}

	id := uuid.NewString()
	session.Values[browserIDKey] = id
	if err := session.Save(r, w); err != nil {
		return "", pkgerrors.Wrap(err, "[loginsession.BrowserID] failed to save session")
	}
	return id, nil
}
