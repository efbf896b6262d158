package errors_test

import (
	"fmt"
	"testing"

	apperrors "github.com/jrsteele09/go-bank-client/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestWrapf(t *testing.T) {
	require.Nil(t, apperrors.Wrapf(nil, "ignored"))

	err := apperrors.Wrapf(apperrors.ErrTokenExpired, "refresh for %s", "user-1")
	require.EqualError(t, err, "refresh for user-1: token expired")
	require.True(t, apperrors.Is(err, apperrors.ErrTokenExpired))
}

type statusErr struct{ code int }

func (e *statusErr) Error() string { return fmt.Sprintf("status %d", e.code) }

func TestAs(t *testing.T) {
	err := fmt.Errorf("outer: %w", &statusErr{code: 418})
	var target *statusErr
	require.True(t, apperrors.As(err, &target))
	require.Equal(t, 418, target.code)
}
