package sessions_test

import (
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-bank-client/internal/errors"
	"github.com/jrsteele09/go-bank-client/sessions"
	"github.com/stretchr/testify/require"
)

func TestIssueAndRedeem(t *testing.T) {
	issuer := sessions.NewIssuer(sessions.NewInMemoryRepo(), 6, time.Minute)

	s, err := issuer.Issue("user-1", sessions.PurposeLogin)
	require.NoError(t, err)
	require.Len(t, s.OTP, 6)
	require.Regexp(t, `^[0-9]{6}$`, s.OTP)

	_, err = issuer.Redeem(s.OTP, sessions.PurposeTransfer)
	require.ErrorIs(t, err, apperrors.ErrInvalidOTP)

	got, err := issuer.Redeem(s.OTP, sessions.PurposeLogin)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.UserID)

	_, err = issuer.Redeem(s.OTP, sessions.PurposeLogin)
	require.ErrorIs(t, err, apperrors.ErrInvalidOTP, "otp is single use")
}

func TestIssueReplacesOutstanding(t *testing.T) {
	issuer := sessions.NewIssuer(sessions.NewInMemoryRepo(), 8, time.Minute)

	first, err := issuer.Issue("user-1", sessions.PurposeLogin)
	require.NoError(t, err)
	second, err := issuer.Issue("user-1", sessions.PurposeLogin)
	require.NoError(t, err)

	if first.OTP != second.OTP {
		_, err = issuer.Redeem(first.OTP, sessions.PurposeLogin)
		require.ErrorIs(t, err, apperrors.ErrInvalidOTP)
	}
	_, err = issuer.Redeem(second.OTP, sessions.PurposeLogin)
	require.NoError(t, err)
}

func TestRedeemExpired(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	sessions.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { sessions.NowTimeFunc = time.Now })

	issuer := sessions.NewIssuer(sessions.NewInMemoryRepo(), 6, time.Minute)
	s, err := issuer.Issue("user-1", sessions.PurposeLogin)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = issuer.Redeem(s.OTP, sessions.PurposeLogin)
	require.ErrorIs(t, err, apperrors.ErrInvalidOTP)
}
