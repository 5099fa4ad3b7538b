package helper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewError(t *testing.T) {
	t.Run("Wrap error with operation and caller", func(t *testing.T) {
		original := errors.New("connection refused")
		err := NewError("connect", original)
		require.Error(t, err, "Expected NewError to return an error")

		assert.Contains(t, err.Error(), "connect", "Expected error message to contain the operation")
		assert.Contains(t, err.Error(), "connection refused", "Expected error message to contain the original error")
		assert.Contains(t, err.Error(), "helper.TestNewError", "Expected error message to contain the calling function")
	})

	t.Run("Wrapped error keeps its cause", func(t *testing.T) {
		sentinel := errors.New("sentinel")
		err := NewError("outer", NewError("inner", sentinel))

		assert.ErrorIs(t, err, sentinel, "Expected errors.Is to find the sentinel through both wrappers")

		var helperErr *Error
		require.ErrorAs(t, err, &helperErr, "Expected errors.As to find the helper error")
		assert.Equal(t, "outer", helperErr.Operation, "Expected outermost operation")
	})

	t.Run("Nil error stays nil", func(t *testing.T) {
		assert.NoError(t, NewError("noop", nil), "Expected nil error to stay nil")
	})
}
