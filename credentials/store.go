package credentials

import (
	"context"

	"github.com/jrsteele09/go-taskmaster/internal/errors"
	"github.com/jrsteele09/go-taskmaster/kvstore"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultAccessTokenKey  = "taskmaster_access_token"
	DefaultRefreshTokenKey = "taskmaster_refresh_token"
)

// TokenPair is the access/refresh bearer pair issued by the remote service.
type TokenPair struct {
	Access  string
	Refresh string
}

// Refresher exchanges a refresh token for a new access token.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

// RefresherFunc adapts a function to Refresher.
type RefresherFunc func(ctx context.Context, refreshToken string) (string, error)

func (f RefresherFunc) Refresh(ctx context.Context, refreshToken string) (string, error) {
	return f(ctx, refreshToken)
}

// Store owns the token pair. Writes and clears always touch both keys in one repo call.
type Store struct {
	repo       kvstore.Repo
	refresher  Refresher
	accessKey  string
	refreshKey string
	log        zerolog.Logger
	refreshes  *singleflight.Group
	flightKey  string
}

type StoreOption func(*Store)

func WithLogger(log zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.log = log
	}
}

// WithSharedRefresh coalesces refreshes across every Store built with the same group and key,
// e.g. all requests from one browser.
func WithSharedRefresh(group *singleflight.Group, key string) StoreOption {
	return func(s *Store) {
		s.refreshes = group
		s.flightKey = key
	}
}

// WithKeys overrides the storage key names.
func WithKeys(accessKey, refreshKey string) StoreOption {
	return func(s *Store) {
		s.accessKey = accessKey
		s.refreshKey = refreshKey
	}
}

func New(repo kvstore.Repo, refresher Refresher, options ...StoreOption) (*Store, error) {
	if repo == nil {
		return nil, pkgerrors.New("[credentials.New] storage repo is required")
	}
	if refresher == nil {
		return nil, pkgerrors.New("[credentials.New] refresher is required")
	}

	s := &Store{
		repo:       repo,
		refresher:  refresher,
		accessKey:  DefaultAccessTokenKey,
		refreshKey: DefaultRefreshTokenKey,
		log:        zerolog.Nop(),
		refreshes:  &singleflight.Group{},
		flightKey:  "refresh",
	}
	for _, opt := range options {
		opt(s)
	}

	if s.refreshes == nil {
		return nil, pkgerrors.New("[credentials.New] refresh group is required")
	}
	if s.accessKey == "" || s.refreshKey == "" || s.accessKey == s.refreshKey {
		return nil, pkgerrors.New("[credentials.New] token keys must be distinct and non-empty")
	}
	return s, nil
}

// SetTokens replaces the stored pair. A pair with a missing half is rejected.
func (s *Store) SetTokens(ctx context.Context, pair TokenPair) error {
	if pair.Access == "" || pair.Refresh == "" {
		return errors.ErrPartialTokenPair
	}
	return s.repo.SetMany(ctx, map[string]string{
		s.accessKey:  pair.Access,
		s.refreshKey: pair.Refresh,
	})
}

// AccessToken reports the stored access token. Storage failures read as absent.
func (s *Store) AccessToken(ctx context.Context) (string, bool) {
	if s == nil {
		return "", false
	}
	return s.lookup(ctx, s.accessKey)
}

func (s *Store) RefreshToken(ctx context.Context) (string, bool) {
	if s == nil {
		return "", false
	}
	return s.lookup(ctx, s.refreshKey)
}

// ClearTokens removes both tokens. Clearing an empty store is not an error.
func (s *Store) ClearTokens(ctx context.Context) error {
	if s == nil || s.repo == nil {
		return nil
	}
	return s.repo.RemoveMany(ctx, s.accessKey, s.refreshKey)
}

// IsAuthenticated is a presence check on the access token, not a validity check.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	_, ok := s.AccessToken(ctx)
	return ok
}

// RefreshAccessToken exchanges the stored refresh token for a new access token.
// Concurrent callers share a single in-flight exchange. Any failure clears both tokens.
func (s *Store) RefreshAccessToken(ctx context.Context) error {
	if s == nil {
		return errors.ErrNoRefreshToken
	}
	// the shared exchange outlives any single waiter giving up
	shared := context.WithoutCancel(ctx)
	ch := s.refreshes.DoChan(s.flightKey, func() (interface{}, error) {
		return nil, s.refresh(shared)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return errors.Join(errors.ErrRefreshFailed, ctx.Err())
	}
}

func (s *Store) refresh(ctx context.Context) error {
	refreshToken, ok := s.RefreshToken(ctx)
	if !ok {
		return errors.ErrNoRefreshToken
	}

	access, err := s.refresher.Refresh(ctx, refreshToken)
	if err == nil && access == "" {
		err = errors.ErrMalformedResponse
	}
	if err == nil {
		err = s.SetTokens(ctx, TokenPair{Access: access, Refresh: refreshToken})
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("access token refresh failed, clearing credentials")
		if clearErr := s.ClearTokens(ctx); clearErr != nil {
			s.log.Err(clearErr).Msg("failed to clear credentials")
		}
		return errors.Join(errors.ErrRefreshFailed, err)
	}

	s.log.Debug().Msg("access token refreshed")
	return nil
}

func (s *Store) lookup(ctx context.Context, key string) (string, bool) {
	if s.repo == nil {
		return "", false
	}
	v, found, err := s.repo.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("credential storage read failed")
		return "", false
	}
	if !found || v == "" {
		return "", false
	}
	return v, true
}
