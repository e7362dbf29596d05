package utils_test

import (
	"testing"

	"github.com/jrsteele09/go-taskmaster/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestPointers(t *testing.T) {
	require.Equal(t, "", utils.Value[string](nil))
	require.Equal(t, 3, utils.Value(utils.Ptr(3)))

	require.Nil(t, utils.ChangedPtr("a@example.com", "a@example.com"))
	changed := utils.ChangedPtr("a@example.com", "b@example.com")
	require.NotNil(t, changed)
	require.Equal(t, "b@example.com", *changed)
}

func TestMessages(t *testing.T) {
	require.Equal(t, []string{"required"}, utils.Messages("required"))
	require.Equal(t, []string{"a", "b"}, utils.Messages([]any{"a", 1, "b"}))
	require.Nil(t, utils.Messages(42))
}
