// Package gateway sends every backend call with session credentials attached and
// recovers from an expired session with a single shared refresh.
//
// When a call is rejected with 401 the first such call refreshes the session; calls
// rejected while that refresh is running wait in a FIFO queue and inherit its outcome.
// Each call is replayed at most once.
package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-bank-client/credentials"
	"github.com/jrsteele09/go-bank-client/internal/config"
	"github.com/rs/zerolog/log"
)

// Gateway is the single entry point for backend calls. Construct one per backend and share it.
type Gateway struct {
	baseURL        string
	loginPath      string
	refreshPath    string
	refreshTimeout time.Duration
	maxPending     int
	httpClient     *http.Client
	store          credentials.Store
	navigator      Navigator

	lock       sync.Mutex
	refreshing bool
	pending    []*pendingRequest
}

type Option func(*Gateway)

// WithHTTPClient replaces the transport client. Its timeout is left as given.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) {
		g.httpClient = c
	}
}

func New(cfg config.GatewayConfig, store credentials.Store, navigator Navigator, opts ...Option) *Gateway {
	g := &Gateway{
		baseURL:        strings.TrimRight(cfg.GetAPIBaseURL(), "/"),
		loginPath:      cfg.GetLoginPath(),
		refreshPath:    cfg.GetRefreshPath(),
		refreshTimeout: cfg.GetRefreshTimeout(),
		maxPending:     cfg.GetMaxPendingRequests(),
		httpClient:     &http.Client{Timeout: cfg.GetRequestTimeout()},
		store:          store,
		navigator:      navigator,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// call is one Send invocation; retried is set once the call has used its single replay.
type call struct {
	method      string
	path        string
	query       url.Values
	header      http.Header
	body        []byte
	contentType string
	retried     bool
}

// Send issues req. It returns the response for any 2xx status, *BackendError for other
// non-401 statuses, *NetworkError when nothing came back, and *AuthExpiredError when
// the session could not be renewed.
func (g *Gateway) Send(ctx context.Context, req *Request) (*Response, error) {
	body, contentType, err := req.encode()
	if err != nil {
		return nil, err
	}
	return g.send(ctx, &call{
		method:      req.Method,
		path:        req.Path,
		query:       req.Query,
		header:      req.Header,
		body:        body,
		contentType: contentType,
	})
}

func (g *Gateway) send(ctx context.Context, c *call) (*Response, error) {
	resp, err := g.do(ctx, c.method, c.path, c.query, c.header, c.body, c.contentType)
	if err != nil {
		return nil, err
	}
	if resp.Status != http.StatusUnauthorized {
		return result(c, resp)
	}
	if c.retried {
		return nil, &AuthExpiredError{Method: c.method, Path: c.path}
	}
	c.retried = true

	g.lock.Lock()
	if g.refreshing {
		if len(g.pending) >= g.maxPending {
			g.lock.Unlock()
			return nil, fmt.Errorf("%s %s: %w", c.method, c.path, ErrPendingQueueFull)
		}
		p := newPendingRequest()
		g.pending = append(g.pending, p)
		g.lock.Unlock()

		log.Debug().Str("method", c.method).Str("path", c.path).Msg("waiting for session refresh")
		refreshErr, err := p.wait(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s %s: waiting for session refresh: %w", c.method, c.path, err)
		}
		if refreshErr != nil {
			return nil, refreshFailure(c, refreshErr)
		}
		return g.send(ctx, c)
	}
	g.refreshing = true
	g.lock.Unlock()

	if err := g.refresh(ctx); err != nil {
		var netErr *NetworkError
		if !errors.As(err, &netErr) {
			g.redirectToLogin()
		}
		return nil, refreshFailure(c, err)
	}
	return g.send(ctx, c)
}

// refresh renews the session once on behalf of every queued call. It runs detached from
// the caller's cancellation because the waiters depend on it, and always clears the
// in-progress flag and settles the queue before returning.
func (g *Gateway) refresh(ctx context.Context) (err error) {
	defer func() {
		g.lock.Lock()
		queue := g.pending
		g.pending = nil
		g.refreshing = false
		g.lock.Unlock()

		settleAll(queue, err)
		if err != nil {
			log.Warn().Err(err).Int("waiting", len(queue)).Msg("session refresh failed")
		} else {
			log.Debug().Int("waiting", len(queue)).Msg("session refreshed")
		}
	}()

	refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.refreshTimeout)
	defer cancel()

	req := Post(g.refreshPath, g.store.RefreshPayload())
	body, contentType, err := req.encode()
	if err != nil {
		return err
	}
	resp, err := g.do(refreshCtx, req.Method, req.Path, nil, nil, body, contentType)
	if err != nil {
		return err
	}
	if resp.Status < 200 || resp.Status > 299 {
		return &BackendError{Method: req.Method, Path: req.Path, Status: resp.Status, Body: resp.Body}
	}
	return nil
}

func (g *Gateway) redirectToLogin() {
	if g.navigator == nil || g.loginPath == "" {
		return
	}
	if g.navigator.CurrentPath() == g.loginPath {
		return
	}
	log.Info().Str("to", g.loginPath).Msg("session expired, redirecting to sign in")
	g.navigator.Navigate(g.loginPath)
}

func (g *Gateway) do(ctx context.Context, method, path string, query url.Values, header http.Header, body []byte, contentType string) (*Response, error) {
	target := g.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("%s %s: create request: %w", method, path, err)
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	requestID := uuid.New().String()
	req.Header.Set("X-Request-ID", requestID)

	if err := g.store.Attach(req); err != nil {
		return nil, fmt.Errorf("%s %s: attach credentials: %w", method, path, err)
	}

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("request_id", requestID).Str("method", method).Str("path", path).Msg("backend unreachable")
		return nil, &NetworkError{Method: method, Path: path, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Method: method, Path: path, Err: err}
	}
	if err := g.store.Capture(resp, data); err != nil {
		log.Warn().Err(err).Str("request_id", requestID).Msg("failed to store credentials")
	}

	log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("backend call")

	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// ClearCredentials forgets the session held by the credential store.
func (g *Gateway) ClearCredentials() error {
	return g.store.Clear()
}

func result(c *call, resp *Response) (*Response, error) {
	if resp.Status < 200 || resp.Status > 299 {
		return nil, &BackendError{Method: c.method, Path: c.path, Status: resp.Status, Body: resp.Body}
	}
	return resp, nil
}

// refreshFailure maps a failed refresh to the error seen by a waiting call. Transport
// failures stay network errors; a refresh the backend refused ends the session.
func refreshFailure(c *call, err error) error {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return err
	}
	return &AuthExpiredError{Method: c.method, Path: c.path, Cause: err}
}
