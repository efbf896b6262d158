package config

import (
	"path/filepath"
	"time"
)

type GatewayConfig interface {
	GetAPIBaseURL() string
	GetLoginPath() string
	GetRefreshPath() string
	GetRequestTimeout() time.Duration
	GetRefreshTimeout() time.Duration
	GetMaxPendingRequests() int
	GetCredentialMode() string
	GetCredentialFile() string
}

const (
	CredentialModeCookie = "cookie"
	CredentialModeBearer = "bearer"
)

type Gateway struct{}

var _ GatewayConfig = Gateway{}

func (Gateway) GetAPIBaseURL() string {
	return GetEnv("API_BASE_URL", "http://localhost:8000/api/v1")
}

// GetLoginPath is the sign-in location the gateway navigates to when a session cannot be renewed.
func (Gateway) GetLoginPath() string {
	return GetEnv("LOGIN_PATH", "/login")
}

func (Gateway) GetRefreshPath() string {
	return GetEnv("REFRESH_PATH", "/auth/refresh/")
}

func (Gateway) GetRequestTimeout() time.Duration {
	return GetDuration("GATEWAY_REQUEST_TIMEOUT", 30*time.Second)
}

// GetRefreshTimeout defaults to the ordinary request timeout.
func (g Gateway) GetRefreshTimeout() time.Duration {
	return GetDuration("GATEWAY_REFRESH_TIMEOUT", g.GetRequestTimeout())
}

func (Gateway) GetMaxPendingRequests() int {
	n := GetInt("GATEWAY_MAX_PENDING", 64)
	if n < 1 {
		return 64
	}
	return n
}

func (Gateway) GetCredentialMode() string {
	return GetEnv("GATEWAY_CREDENTIAL_MODE", CredentialModeCookie)
}

func (Gateway) GetCredentialFile() string {
	return GetEnv("GATEWAY_CREDENTIAL_FILE", filepath.Join(EnvVars{}.GetDataFolder(), "session.json"))
}
