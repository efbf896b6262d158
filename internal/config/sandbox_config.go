package config

import (
	"fmt"
	"strings"
	"time"
)

type SandboxConfig interface {
	GetPort() string
	GetTokenSecret() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetRefreshTokenLength() int
	GetOTPLength() int
	GetOTPExpiry() time.Duration
	GetAccessCookieName() string
	GetRefreshCookieName() string
	GetCookieSecure() bool
	GetSeedUsers() bool
	GetSeedPassword() string
}

type Sandbox struct{}

var _ SandboxConfig = Sandbox{}

func (Sandbox) GetPort() string {
	port := GetEnv("PORT", "8000")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (Sandbox) GetTokenSecret() string {
	return GetEnv("SANDBOX_TOKEN_SECRET", "sandbox-signing-secret")
}

// GetAccessTokenExpiry is short so that clients exercise the refresh path.
func (Sandbox) GetAccessTokenExpiry() time.Duration {
	return GetDuration("SANDBOX_ACCESS_TOKEN_EXPIRY", 5*time.Minute)
}

func (Sandbox) GetRefreshTokenExpiry() time.Duration {
	return GetDuration("SANDBOX_REFRESH_TOKEN_EXPIRY", 24*time.Hour)
}

func (Sandbox) GetRefreshTokenLength() int {
	return 32 // 32 bytes = 256 bits
}

func (Sandbox) GetOTPLength() int {
	return 6
}

func (Sandbox) GetOTPExpiry() time.Duration {
	return GetDuration("SANDBOX_OTP_EXPIRY", 10*time.Minute)
}

func (Sandbox) GetAccessCookieName() string {
	return GetEnv("SANDBOX_ACCESS_COOKIE", "access")
}

func (Sandbox) GetRefreshCookieName() string {
	return GetEnv("SANDBOX_REFRESH_COOKIE", "refresh")
}

func (Sandbox) GetCookieSecure() bool {
	return GetBool("SANDBOX_COOKIE_SECURE", false)
}

// GetSeedUsers creates demo staff and customer accounts at startup.
func (Sandbox) GetSeedUsers() bool {
	return GetBool("SANDBOX_SEED_USERS", true)
}

func (Sandbox) GetSeedPassword() string {
	return GetEnv("SANDBOX_SEED_PASSWORD", "Sandbox123")
}
