package kvstore_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-taskmaster/kvstore"
	"github.com/jrsteele09/go-taskmaster/kvstore/kvfake"
	"github.com/stretchr/testify/require"
)

func TestScoped(t *testing.T) {
	ctx := context.Background()
	base := kvfake.NewFakeRepo()

	alice := kvstore.Scoped(base, "browser:alice")
	bob := kvstore.Scoped(base, "browser:bob")

	require.NoError(t, alice.SetMany(ctx, map[string]string{"token": "a"}))
	require.NoError(t, bob.SetMany(ctx, map[string]string{"token": "b"}))
	require.Equal(t, []string{"browser:alice:token", "browser:bob:token"}, base.Keys())

	v, found, err := alice.Get(ctx, "token")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "a", v)

	require.NoError(t, alice.RemoveMany(ctx, "token"))
	_, found, err = alice.Get(ctx, "token")
	require.NoError(t, err)
	require.False(t, found)

	v, found, err = bob.Get(ctx, "token")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "b", v)
}
