package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jrsteele09/go-taskmaster/credentials"
	"github.com/jrsteele09/go-taskmaster/internal/config"
	"github.com/jrsteele09/go-taskmaster/internal/errors"
)

var _ credentials.Refresher = (*TokenRefresher)(nil)

// TokenRefresher calls the refresh endpoint directly, never through Client.Do,
// so a 401 from the refresh endpoint cannot trigger another refresh.
type TokenRefresher struct {
	url        string
	httpClient *http.Client
	metrics    *Metrics
}

type RefresherOption func(*TokenRefresher)

// WithRefreshMetrics counts refresh calls in the same request metrics as Client.
func WithRefreshMetrics(m *Metrics) RefresherOption {
	return func(r *TokenRefresher) {
		r.metrics = m
	}
}

func NewTokenRefresher(cfg config.APIConfig, httpClient *http.Client, options ...RefresherOption) *TokenRefresher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.GetAPITimeout()}
	}
	r := &TokenRefresher{
		url:        cfg.GetAPIBaseURL() + cfg.GetRoutes().Refresh,
		httpClient: httpClient,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *TokenRefresher) Refresh(ctx context.Context, refreshToken string) (string, error) {
	body, err := json.Marshal(RefreshRequest{Refresh: refreshToken})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", ContentTypeJSON)
	req.Header.Set("Accept", ContentTypeJSON)

	start := time.Now()
	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.metrics.observeRequest(http.MethodPost, 0, time.Since(start))
		return "", errors.Join(errors.ErrTransport, err)
	}
	r.metrics.observeRequest(http.MethodPost, resp.StatusCode, time.Since(start))

	out, err := DecodeJSON[RefreshResponse](resp)
	if err != nil {
		return "", err
	}
	if out.Access == "" {
		return "", errors.Wrapf(errors.ErrMalformedResponse, "refresh response without access token")
	}
	return out.Access, nil
}
