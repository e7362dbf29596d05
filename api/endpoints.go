package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-taskmaster/internal/errors"
	"github.com/jrsteele09/go-taskmaster/tasks"
)

func (c *Client) Login(ctx context.Context, email, password string) (TokenResponse, error) {
	out, err := call[TokenResponse](ctx, c, http.MethodPost, c.routes.Login, LoginRequest{Email: email, Password: password}, false)
	if err != nil {
		return TokenResponse{}, err
	}
	if out.Access == "" || out.Refresh == "" {
		return TokenResponse{}, errors.Wrapf(errors.ErrMalformedResponse, "login response without token pair")
	}
	return out, nil
}

// Register creates an account. It does not sign in.
func (c *Client) Register(ctx context.Context, email, password string) (tasks.Master, error) {
	return call[tasks.Master](ctx, c, http.MethodPost, c.routes.Register, RegisterRequest{Email: email, Password: password}, false)
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := call[Ack](ctx, c, http.MethodPost, c.routes.Logout, nil, true)
	return err
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) (Ack, error) {
	return call[Ack](ctx, c, http.MethodPost, c.routes.PasswordReset, PasswordResetRequest{Email: email}, false)
}

func (c *Client) ConfirmPasswordReset(ctx context.Context, req PasswordResetConfirmRequest) (Ack, error) {
	return call[Ack](ctx, c, http.MethodPost, c.routes.PasswordResetConfirm, req, false)
}

func (c *Client) CurrentUser(ctx context.Context) (tasks.Master, error) {
	return call[tasks.Master](ctx, c, http.MethodGet, c.routes.CurrentUser, nil, true)
}

func (c *Client) UpdateCurrentUser(ctx context.Context, patch tasks.MasterPatch) (tasks.Master, error) {
	return call[tasks.Master](ctx, c, http.MethodPatch, c.routes.CurrentUser, patch, true)
}

func (c *Client) Tasks(ctx context.Context) ([]tasks.Task, error) {
	list, err := call[[]tasks.Task](ctx, c, http.MethodGet, c.routes.Tasks, nil, true)
	if list == nil && err == nil {
		list = []tasks.Task{}
	}
	return list, err
}

func (c *Client) Task(ctx context.Context, id int64) (tasks.Task, error) {
	return call[tasks.Task](ctx, c, http.MethodGet, c.routes.TaskPath(id), nil, true)
}

func (c *Client) CreateTask(ctx context.Context, task tasks.NewTask) (tasks.Task, error) {
	return call[tasks.Task](ctx, c, http.MethodPost, c.routes.Tasks, task, true)
}

// UpdateTask sends only the fields set in patch.
func (c *Client) UpdateTask(ctx context.Context, id int64, patch tasks.TaskPatch) (tasks.Task, error) {
	return call[tasks.Task](ctx, c, http.MethodPatch, c.routes.TaskPath(id), patch, true)
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	_, err := call[json.RawMessage](ctx, c, http.MethodDelete, c.routes.TaskPath(id), nil, true)
	return err
}

func call[T any](ctx context.Context, c *Client, method, path string, in any, requireAuth bool) (T, error) {
	var zero T

	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return zero, errors.Wrapf(err, "encoding %s %s", method, path)
		}
	}

	resp, err := c.Do(ctx, Request{
		Method:      method,
		Path:        path,
		Body:        body,
		RequireAuth: requireAuth,
	})
	if err != nil {
		return zero, err
	}
	return DecodeJSON[T](resp)
}
