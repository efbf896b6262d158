package sandbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/go-bank-client/internal/errors"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

const maxBodyBytes = 10 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to write response")
	}
}

// writeRaw writes an already encoded JSON document.
func writeRaw(w http.ResponseWriter, status int, doc []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(doc)
}

func writeMessage(w http.ResponseWriter, status int, msg string, extra map[string]any) {
	body := map[string]any{"message": msg}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// fieldErrors is the body of a validation failure: field name to messages.
type fieldErrors map[string][]string

func (f fieldErrors) add(field, msg string) {
	f[field] = append(f[field], msg)
}

func (f fieldErrors) require(body gjson.Result, fields ...string) {
	for _, name := range fields {
		if strings.TrimSpace(body.Get(name).String()) == "" {
			f.add(name, "This field is required.")
		}
	}
}

// errorStatus maps an error to an HTTP status and a client-facing body.
func errorStatus(err error) (int, map[string]any) {
	switch {
	case errors.Is(err, apperrors.ErrNotAuthenticated):
		return http.StatusUnauthorized, map[string]any{"detail": "Authentication credentials were not provided."}
	case errors.Is(err, apperrors.ErrTokenExpired),
		errors.Is(err, apperrors.ErrInvalidToken),
		errors.Is(err, apperrors.ErrInvalidRefreshToken),
		errors.Is(err, apperrors.ErrRefreshTokenExpired):
		return http.StatusUnauthorized, map[string]any{"detail": "Token is invalid or expired", "code": "token_not_valid"}
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, map[string]any{"detail": "You do not have permission to perform this action."}
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusBadRequest, map[string]any{"error": "Invalid email or password"}
	case errors.Is(err, apperrors.ErrUserInactive):
		return http.StatusBadRequest, map[string]any{"error": "Account is not activated. Check your email for the activation link."}
	case errors.Is(err, apperrors.ErrInvalidOTP):
		return http.StatusBadRequest, map[string]any{"error": "Invalid or expired OTP"}
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		return http.StatusBadRequest, map[string]any{"error": "Insufficient funds"}
	case errors.Is(err, apperrors.ErrTransferState):
		return http.StatusBadRequest, map[string]any{"error": "No transfer is awaiting this step. Start the transfer again."}
	case errors.Is(err, apperrors.ErrAccountNotFound):
		return http.StatusNotFound, map[string]any{"error": "Account not found"}
	case errors.Is(err, apperrors.ErrUserNotFound), errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, map[string]any{"detail": "Not found."}
	case errors.Is(err, apperrors.ErrInvalidRequest):
		return http.StatusBadRequest, map[string]any{"error": strings.TrimPrefix(err.Error(), apperrors.ErrInvalidRequest.Error()+": ")}
	default:
		return http.StatusInternalServerError, map[string]any{"detail": "Internal server error"}
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorStatus(err)
	event := log.Debug()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Str("path", r.URL.Path).Int("status", status).Str("request_id", requestID(r)).Msg("Request failed")
	writeJSON(w, status, body)
}

// readJSON reads a JSON object body. An empty body reads as an empty object.
func readJSON(w http.ResponseWriter, r *http.Request) ([]byte, gjson.Result, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, gjson.Result{}, fmt.Errorf("%w: read body: %v", apperrors.ErrInvalidRequest, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		data = []byte("{}")
	}
	if !gjson.ValidBytes(data) {
		return nil, gjson.Result{}, fmt.Errorf("%w: malformed JSON", apperrors.ErrInvalidRequest)
	}
	body := gjson.ParseBytes(data)
	if !body.IsObject() {
		return nil, gjson.Result{}, fmt.Errorf("%w: expected a JSON object", apperrors.ErrInvalidRequest)
	}
	return data, body, nil
}
