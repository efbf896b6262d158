// Package credentials holds the session credential pair on behalf of the gateway.
//
// A Store is consulted before every outbound call and updated from every response,
// so call sites never see or handle the access and refresh credentials themselves.
package credentials

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/jrsteele09/go-bank-client/internal/config"
	apperrors "github.com/jrsteele09/go-bank-client/internal/errors"
)

// Store attaches session credentials to requests and captures renewed ones from responses.
type Store interface {
	// Attach adds the current credentials to an outbound request.
	Attach(req *http.Request) error

	// Capture records any credentials issued or revoked by a response.
	Capture(resp *http.Response, body []byte) error

	// RefreshPayload is the JSON body for the session renewal call, or nil when the
	// refresh credential travels with Attach.
	RefreshPayload() any

	// Clear forgets all credentials.
	Clear() error
}

// New returns the store for the configured credential mode. A non-empty path enables
// persistence so separate processes share one session. tokenPaths only matter in
// bearer mode; see NewBearerStore.
func New(mode, path string, tokenPaths ...string) (Store, error) {
	switch mode {
	case "", config.CredentialModeCookie:
		return NewCookieStore(path)
	case config.CredentialModeBearer:
		return NewBearerStore(path, tokenPaths...)
	default:
		return nil, fmt.Errorf("unknown credential mode %q", mode)
	}
}

func readJSONFile(path string, v any) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return apperrors.Wrapf(err, "read credentials %s", path)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return apperrors.Wrapf(err, "parse credentials %s", path)
	}
	return nil
}

func writeJSONFile(path string, v any) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return apperrors.Wrapf(err, "create credentials folder")
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperrors.Wrapf(err, "encode credentials")
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return apperrors.Wrapf(err, "write credentials")
	}
	return os.Rename(tmp, path)
}

func removeFile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return apperrors.Wrapf(err, "remove credentials %s", path)
	}
	return nil
}
