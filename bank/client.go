// Package bank is a typed client for the banking API. Every call goes through the
// authenticated gateway, so an expired session is renewed transparently.
package bank

import (
	"context"
	"errors"
	"net/http"

	"github.com/jrsteele09/go-bank-client/gateway"
)

// Sender is the part of the gateway the client needs.
type Sender interface {
	Send(ctx context.Context, req *gateway.Request) (*gateway.Response, error)
	ClearCredentials() error
}

var _ Sender = (*gateway.Gateway)(nil)

// Client exposes the banking API operations.
type Client struct {
	gateway Sender
}

func New(g Sender) *Client {
	return &Client{gateway: g}
}

func (c *Client) send(ctx context.Context, req *gateway.Request) (*gateway.Response, error) {
	return c.gateway.Send(ctx, req)
}

// message sends req and returns the backend's confirmation message, if any.
func (c *Client) message(ctx context.Context, req *gateway.Request) (string, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.JSON().Get("message").String(), nil
}

func isStatus(err error, status int) bool {
	var backendErr *gateway.BackendError
	return errors.As(err, &backendErr) && backendErr.Status == status
}

func isNotFound(err error) bool {
	return isStatus(err, http.StatusNotFound)
}
