package errutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAsUnwrapsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", NotFound("task not found"))

	base, ok := As(err)
	require.True(t, ok)
	require.Equal(t, StatusNotFound, base.Code)
	require.Equal(t, "task not found", base.Message)
}

func TestAsPlainError(t *testing.T) {
	_, ok := As(errors.New("boom"))
	require.False(t, ok)
}

func TestWithErrKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("failed to load task", WithErr(cause))

	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "connection refused")
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[CoreStatus]int{
		StatusValidationFailed: http.StatusBadRequest,
		StatusUnauthorized:     http.StatusUnauthorized,
		StatusForbidden:        http.StatusForbidden,
		StatusNotFound:         http.StatusNotFound,
		StatusConflict:         http.StatusConflict,
		StatusInternal:         http.StatusInternalServerError,
		StatusUnknown:          http.StatusInternalServerError,
	}
	for status, want := range cases {
		require.Equal(t, want, status.HTTPStatus(), "status %s", status)
	}
}
