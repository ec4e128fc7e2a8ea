package errors_test

import (
	"io"
	"testing"

	"github.com/jrsteele09/go-portal-auth/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestWrapf(t *testing.T) {
	require.NoError(t, errors.Wrapf(nil, "reading %s", "input"))

	err := errors.Wrapf(io.EOF, "reading %s", "password")
	require.EqualError(t, err, "reading password: EOF")
	require.True(t, errors.Is(err, io.EOF))

	wrapped := errors.Wrapf(errors.ErrNotSignedIn, "whoami")
	require.True(t, errors.Is(wrapped, errors.ErrNotSignedIn))
}
