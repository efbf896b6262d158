package bank_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-bank-client/bank"
	"github.com/jrsteele09/go-bank-client/gateway"
	"github.com/stretchr/testify/require"
)

func backendErr(status int, body string) error {
	return &gateway.BackendError{Method: http.MethodPost, Path: "/x/", Status: status, Body: []byte(body)}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"error key", backendErr(400, `{"error":"Invalid OTP","detail":"ignored"}`), "Invalid OTP"},
		{"detail key", backendErr(403, `{"detail":"You do not have permission"}`), "You do not have permission"},
		{"message key", backendErr(400, `{"message":"Insufficient funds"}`), "Insufficient funds"},
		{"non field errors", backendErr(400, `{"non_field_errors":["Passwords do not match"]}`), "Passwords do not match"},
		{"first field", backendErr(400, `{"id_no":["This field is required."],"email":["Taken"]}`), "Id No: This field is required."},
		{"field string", backendErr(400, `{"email":"Taken"}`), "Email: Taken"},
		{"not json", backendErr(502, `<html>bad gateway</html>`), "fallback"},
		{"empty object", backendErr(400, `{}`), "fallback"},
		{"network", &gateway.NetworkError{Method: http.MethodGet, Path: "/x/", Err: errors.New("refused")}, "Network error. Please try again later."},
		{"auth expired", &gateway.AuthExpiredError{Method: http.MethodGet, Path: "/x/"}, "Session expired. Please login again."},
		{"other", errors.New("boom"), "fallback"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, bank.ErrorMessage(tc.err, "fallback"))
		})
	}
	require.Empty(t, bank.ErrorMessage(nil, "fallback"))
}

func TestFieldErrors(t *testing.T) {
	fields := bank.FieldErrors(backendErr(400, `{"email":["Enter a valid email address."],"password":["Too short","Too common"],"detail":"x"}`))
	require.Equal(t, map[string]string{
		"email":    "Enter a valid email address.",
		"password": "Too short",
	}, fields)

	fields = bank.FieldErrors(backendErr(400, `{"status_code":400,"errors":{"id_no":["Required"]}}`))
	require.Equal(t, map[string]string{"id_no": "Required"}, fields)

	require.Nil(t, bank.FieldErrors(errors.New("boom")))
	require.Nil(t, bank.FieldErrors(backendErr(500, `oops`)))
}

func TestFieldErrors_FromClientCall(t *testing.T) {
	stub := newStub(t).on(http.MethodPost, bank.PathUsers, http.StatusBadRequest, `{"email":["user with this email already exists."]}`)
	_, err := bank.New(stub).Register(context.Background(), bank.Registration{Email: "a@b.c", Password: "p", RePassword: "p"})
	require.Error(t, err)
	require.Equal(t, "user with this email already exists.", bank.FieldErrors(err)["email"])
}
