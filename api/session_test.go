package api_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-taskmaster/api"
	"github.com/jrsteele09/go-taskmaster/internal/errors"
	"github.com/jrsteele09/go-taskmaster/tasks"
	"github.com/stretchr/testify/require"
)

func TestSignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("registers then signs in", func(t *testing.T) {
		f := setupTestFixture(t)
		master, err := f.client.SignUp(ctx, testEmail, testPassword)
		require.NoError(t, err)
		require.Equal(t, testEmail, master.Email)
		require.NotZero(t, master.ID)
		require.True(t, f.creds.IsAuthenticated(ctx))

		me, err := f.client.CurrentUser(ctx)
		require.NoError(t, err)
		require.Equal(t, master, me)
	})

	t.Run("duplicate email is a field error", func(t *testing.T) {
		f := setupTestFixture(t)
		f.fake.AddAccount(testEmail, testPassword)

		_, err := f.client.SignUp(ctx, testEmail, testPassword)
		var verr *api.ValidationError
		require.True(t, errors.As(err, &verr))
		require.Equal(t, "master with this email already exists.", verr.Field("email"))
		require.False(t, f.creds.IsAuthenticated(ctx))
	})

	t.Run("account created but sign in failed", func(t *testing.T) {
		f := setupTestFixture(t)
		f.fake.FailNext(http.MethodPost, "/login", http.StatusServiceUnavailable, "")

		master, err := f.client.SignUp(ctx, testEmail, testPassword)
		require.ErrorIs(t, err, errors.ErrSignInAfterSignUp)
		require.Equal(t, testEmail, master.Email)
		require.False(t, f.creds.IsAuthenticated(ctx))
		require.Contains(t, api.Message(err), "Account created")
	})
}

func TestSignOut(t *testing.T) {
	ctx := context.Background()

	t.Run("revokes remotely and clears locally", func(t *testing.T) {
		f := setupTestFixture(t)
		f.signIn(t)
		refresh, _ := f.creds.RefreshToken(ctx)

		require.NoError(t, f.client.SignOut(ctx))
		require.Empty(t, f.repo.Keys())
		require.Equal(t, 1, f.fake.Calls(http.MethodPost, "/logout"))

		// the old refresh token no longer works
		_, err := api.NewTokenRefresher(f.fake.Config(), nil).Refresh(ctx, refresh)
		require.Error(t, err)
	})

	t.Run("remote failure still clears", func(t *testing.T) {
		f := setupTestFixture(t)
		f.signIn(t)
		f.fake.FailNext(http.MethodPost, "/logout", http.StatusInternalServerError, "boom")

		require.NoError(t, f.client.SignOut(ctx))
		require.Empty(t, f.repo.Keys())
	})

	t.Run("signed out already", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.client.SignOut(ctx))
		require.Zero(t, f.fake.Calls(http.MethodPost, "/logout"))
	})
}

func TestProfileUpdate(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	f.signIn(t)

	email := "grace@example.com"
	master, err := f.client.UpdateCurrentUser(ctx, tasks.MasterPatch{Email: &email})
	require.NoError(t, err)
	require.Equal(t, email, master.Email)

	require.NoError(t, f.creds.ClearTokens(ctx))
	require.NoError(t, f.client.SignIn(ctx, email, testPassword))
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	f.fake.AddAccount(testEmail, testPassword)

	ack, err := f.client.RequestPasswordReset(ctx, testEmail)
	require.NoError(t, err)
	require.Contains(t, ack.Detail, "sent")

	uid, token, ok := f.fake.ResetLink(testEmail)
	require.True(t, ok)

	_, err = f.client.ConfirmPasswordReset(ctx, api.PasswordResetConfirmRequest{
		UID: uid, Token: token, NewPassword: "N3wPassword", NewPasswordConfirm: "Other",
	})
	var verr *api.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "The two password fields didn't match.", verr.Message())

	_, err = f.client.ConfirmPasswordReset(ctx, api.PasswordResetConfirmRequest{
		UID: uid, Token: token, NewPassword: "N3wPassword", NewPasswordConfirm: "N3wPassword",
	})
	require.NoError(t, err)

	require.Error(t, f.client.SignIn(ctx, testEmail, testPassword))
	require.NoError(t, f.client.SignIn(ctx, testEmail, "N3wPassword"))
}

func TestRefresherUsedByStore(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	f.signIn(t)
	before, _ := f.creds.AccessToken(ctx)

	require.NoError(t, f.creds.RefreshAccessToken(ctx))
	after, ok := f.creds.AccessToken(ctx)
	require.True(t, ok)
	require.NotEqual(t, before, after)
}
