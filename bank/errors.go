package bank

import (
	"errors"
	"strings"

	"github.com/jrsteele09/go-bank-client/gateway"
	"github.com/tidwall/gjson"
)

var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrNoDocuments      = errors.New("select at least one document to upload")
	ErrTransferStep     = errors.New("transfer step out of order")
	ErrProfileNotFound  = errors.New("profile not found, complete your profile setup")
)

// messageKeys are the members a backend error uses for a general message.
var messageKeys = []string{"error", "detail", "message"}

// ErrorMessage returns a human readable message for err, preferring what the backend
// said. fallback is used when nothing better is available.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var netErr *gateway.NetworkError
	if errors.As(err, &netErr) {
		return "Network error. Please try again later."
	}
	if errors.Is(err, gateway.ErrAuthExpired) {
		return "Session expired. Please login again."
	}
	var backendErr *gateway.BackendError
	if !errors.As(err, &backendErr) || !gjson.ValidBytes(backendErr.Body) {
		return fallback
	}

	doc := gjson.ParseBytes(backendErr.Body)
	if !doc.IsObject() {
		return fallback
	}
	for _, key := range messageKeys {
		if v := doc.Get(key); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	if v := first(doc.Get("non_field_errors")); v != "" {
		return v
	}

	msg := ""
	doc.ForEach(func(key, value gjson.Result) bool {
		if v := first(value); v != "" {
			msg = fieldLabel(key.String()) + ": " + v
			return false
		}
		return true
	})
	if msg == "" {
		return fallback
	}
	return msg
}

// FieldErrors maps form fields to their first validation message. Errors nested under
// "errors" take precedence over top-level members.
func FieldErrors(err error) map[string]string {
	var backendErr *gateway.BackendError
	if !errors.As(err, &backendErr) || !gjson.ValidBytes(backendErr.Body) {
		return nil
	}
	doc := gjson.ParseBytes(backendErr.Body)
	if nested := doc.Get("errors"); nested.IsObject() {
		doc = nested
	}
	if !doc.IsObject() {
		return nil
	}

	fields := map[string]string{}
	doc.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		if k == "status_code" || k == "non_field_errors" || isMessageKey(k) {
			return true
		}
		if v := first(value); v != "" {
			fields[k] = v
		}
		return true
	})
	return fields
}

func isMessageKey(k string) bool {
	for _, m := range messageKeys {
		if k == m {
			return true
		}
	}
	return false
}

func first(v gjson.Result) string {
	if v.IsArray() {
		arr := v.Array()
		if len(arr) == 0 {
			return ""
		}
		v = arr[0]
	}
	if v.Type == gjson.String {
		return v.Str
	}
	return ""
}

// fieldLabel turns "id_no" into "Id No".
func fieldLabel(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
