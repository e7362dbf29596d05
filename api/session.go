package api

import (
	"context"

	"github.com/jrsteele09/go-taskmaster/credentials"
	"github.com/jrsteele09/go-taskmaster/internal/errors"
	"github.com/jrsteele09/go-taskmaster/tasks"
)

// SignIn logs in and stores the issued token pair.
func (c *Client) SignIn(ctx context.Context, email, password string) error {
	tokens, err := c.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return c.creds.SetTokens(ctx, credentials.TokenPair{Access: tokens.Access, Refresh: tokens.Refresh})
}

// SignUp registers then signs in with the same credentials.
func (c *Client) SignUp(ctx context.Context, email, password string) (tasks.Master, error) {
	master, err := c.Register(ctx, email, password)
	if err != nil {
		return tasks.Master{}, err
	}
	if err := c.SignIn(ctx, email, password); err != nil {
		c.log.Warn().Err(err).Msg("sign in after sign up failed")
		return master, errors.Join(errors.ErrSignInAfterSignUp, err)
	}
	return master, nil
}

// SignOut tells the service, ignoring its answer, and always drops the local tokens.
func (c *Client) SignOut(ctx context.Context) error {
	if c.creds.IsAuthenticated(ctx) {
		if err := c.Logout(ctx); err != nil {
			c.log.Info().Err(err).Msg("remote logout failed, clearing local session anyway")
		}
	}
	return c.creds.ClearTokens(ctx)
}
