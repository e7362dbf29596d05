package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/jrsteele09/go-taskmaster/credentials"
	"github.com/jrsteele09/go-taskmaster/internal/config"
	"github.com/jrsteele09/go-taskmaster/internal/errors"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const ContentTypeJSON = "application/json"

// Request describes one logical call to the remote service.
type Request struct {
	Method      string
	Path        string
	Body        []byte
	Header      http.Header
	RequireAuth bool
}

// Client dispatches every call to the remote service.
// Authenticated calls that come back 401 get one refresh and one retry.
type Client struct {
	baseURL    string
	routes     config.Routes
	httpClient *http.Client
	creds      *credentials.Store
	log        zerolog.Logger
	metrics    *Metrics
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

func WithMetrics(m *Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

func New(cfg config.APIConfig, creds *credentials.Store, options ...ClientOption) (*Client, error) {
	if cfg == nil {
		return nil, pkgerrors.New("[api.New] config is required")
	}
	if creds == nil {
		return nil, pkgerrors.New("[api.New] credential store is required")
	}
	if cfg.GetAPIBaseURL() == "" {
		return nil, pkgerrors.New("[api.New] base URL is required")
	}

	c := &Client{
		baseURL:    cfg.GetAPIBaseURL(),
		routes:     cfg.GetRoutes(),
		httpClient: &http.Client{Timeout: cfg.GetAPITimeout()},
		creds:      creds,
		log:        zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Credentials exposes the store the client reads tokens from.
func (c *Client) Credentials() *credentials.Store {
	return c.creds
}

// Do sends req. Non-2xx statuses other than a recoverable 401 are returned as-is for the caller to inspect.
// When the refresh after a 401 fails, the tokens are gone and errors.ErrSessionExpired is returned.
func (c *Client) Do(ctx context.Context, req Request) (*http.Response, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || !req.RequireAuth {
		return resp, nil
	}
	discard(resp)

	if err := c.creds.RefreshAccessToken(ctx); err != nil {
		if ctx.Err() != nil {
			// the shared refresh keeps running and clears the tokens itself if it fails
			return nil, err
		}
		c.metrics.observeRefresh(false)
		c.log.Info().Err(err).Str("path", req.Path).Msg("session expired")
		if clearErr := c.creds.ClearTokens(ctx); clearErr != nil {
			c.log.Err(clearErr).Msg("failed to clear credentials")
		}
		return nil, errors.Join(errors.ErrSessionExpired, err)
	}
	c.metrics.observeRefresh(true)

	if !c.creds.IsAuthenticated(ctx) {
		return nil, errors.ErrSessionExpired
	}

	c.metrics.observeRetry()
	c.log.Debug().Str("method", req.Method).Str("path", req.Path).Msg("retrying after refresh")
	return c.send(ctx, req)
}

func (c *Client) send(ctx context.Context, req Request) (*http.Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+req.Path, body)
	if err != nil {
		return nil, errors.Wrapf(err, "building %s %s", method, req.Path)
	}

	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", ContentTypeJSON)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", ContentTypeJSON)
	}
	if req.RequireAuth {
		if access, ok := c.creds.AccessToken(ctx); ok {
			(&oauth2.Token{AccessToken: access}).SetAuthHeader(httpReq)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.observeRequest(method, 0, time.Since(start))
		c.log.Warn().Err(err).Str("method", method).Str("path", req.Path).Msg("request failed")
		return nil, errors.Join(errors.ErrTransport, err)
	}
	c.metrics.observeRequest(method, resp.StatusCode, time.Since(start))
	c.log.Debug().Str("method", method).Str("path", req.Path).Int("status", resp.StatusCode).Msg("request")
	return resp, nil
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}
