package sessions

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	apperrors "github.com/jrsteele09/go-bank-client/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

const maxOTPAttempts = 10

// Issuer hands out numeric one-time passwords.
type Issuer struct {
	repo   Repo
	length int
	ttl    time.Duration
}

func NewIssuer(repo Repo, length int, ttl time.Duration) *Issuer {
	return &Issuer{repo: repo, length: length, ttl: ttl}
}

// Issue replaces any outstanding challenge of the same purpose for userID.
func (i *Issuer) Issue(userID string, purpose Purpose) (*SessionData, error) {
	if err := i.repo.DeleteForUser(userID, purpose); err != nil {
		return nil, fmt.Errorf("[sessions.Issue] %w", err)
	}
	for range maxOTPAttempts {
		otp, err := randomDigits(i.length)
		if err != nil {
			return nil, fmt.Errorf("[sessions.Issue] %w", err)
		}
		if _, err := i.repo.Get(otp); err == nil {
			continue
		}
		now := NowTimeFunc()
		s := &SessionData{OTP: otp, UserID: userID, Purpose: purpose, CreatedAt: now, ExpiresAt: now.Add(i.ttl)}
		if err := i.repo.Upsert(s); err != nil {
			return nil, fmt.Errorf("[sessions.Issue] %w", err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("[sessions.Issue] no free otp after %d attempts", maxOTPAttempts)
}

// Redeem consumes otp. It succeeds once, for the purpose it was issued for.
func (i *Issuer) Redeem(otp string, purpose Purpose) (*SessionData, error) {
	s, err := i.repo.Get(otp)
	if err != nil || s.Purpose != purpose {
		return nil, apperrors.ErrInvalidOTP
	}
	_ = i.repo.Delete(otp)
	if s.Expired(NowTimeFunc()) {
		return nil, apperrors.ErrInvalidOTP
	}
	return s, nil
}

func randomDigits(n int) (string, error) {
	digits := make([]byte, n)
	for j := range digits {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[j] = byte('0' + d.Int64())
	}
	return string(digits), nil
}
