package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-bank-client/credentials"
	"github.com/jrsteele09/go-bank-client/gateway"
	"github.com/jrsteele09/go-bank-client/internal/config"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const freshAccess = "fresh"

// refreshHangsUp makes the refresh endpoint drop the connection without a response.
const refreshHangsUp = -1

type testConfig struct {
	config.Gateway
	baseURL    string
	maxPending int
}

func (c testConfig) GetAPIBaseURL() string { return c.baseURL }

func (c testConfig) GetMaxPendingRequests() int {
	if c.maxPending > 0 {
		return c.maxPending
	}
	return c.Gateway.GetMaxPendingRequests()
}

type mockNavigator struct {
	mock.Mock
}

func (m *mockNavigator) CurrentPath() string {
	return m.Called().String(0)
}

func (m *mockNavigator) Navigate(path string) {
	m.Called(path)
}

func navigatorAt(path string) *mockNavigator {
	nav := &mockNavigator{}
	nav.On("CurrentPath").Return(path).Maybe()
	nav.On("Navigate", mock.Anything).Return().Maybe()
	return nav
}

// backend accepts protected calls only with the fresh access cookie. The refresh
// endpoint issues it when refreshStatus is 200.
type backend struct {
	server         *httptest.Server
	refreshStatus  int
	replayRejected bool
	release        chan struct{}
	refreshStarted chan struct{}
	refreshCalls   atomic.Int32
	protectedCalls atomic.Int32

	bodiesLock sync.Mutex
	bodies     []string
}

type backendOption func(*backend)

func withRefreshStatus(status int) backendOption {
	return func(b *backend) { b.refreshStatus = status }
}

// withBlockedRefresh holds the refresh until release is closed.
func withBlockedRefresh() backendOption {
	return func(b *backend) { b.release = make(chan struct{}) }
}

// withReplayRejected rejects protected calls even with fresh credentials.
func withReplayRejected() backendOption {
	return func(b *backend) { b.replayRejected = true }
}

func newBackend(t *testing.T, opts ...backendOption) *backend {
	t.Helper()
	b := &backend{
		refreshStatus:  http.StatusOK,
		refreshStarted: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(b)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh/", b.refresh)
	mux.HandleFunc("POST /accounts/deposit/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "You do not have permission to perform this action."})
	})
	mux.HandleFunc("GET /accounts/boom/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "ledger offline"})
	})
	mux.HandleFunc("/", b.protected)

	b.server = httptest.NewServer(mux)
	t.Cleanup(func() {
		if b.release != nil {
			select {
			case <-b.release:
			default:
				close(b.release)
			}
		}
		b.server.Close()
	})
	return b
}

func (b *backend) refresh(w http.ResponseWriter, r *http.Request) {
	b.refreshCalls.Add(1)
	select {
	case b.refreshStarted <- struct{}{}:
	default:
	}
	if b.release != nil {
		<-b.release
	}

	switch b.refreshStatus {
	case refreshHangsUp:
		hj, ok := w.(http.Hijacker)
		if !ok {
			panic("hijack unsupported")
		}
		conn, _, err := hj.Hijack()
		if err == nil {
			_ = conn.Close()
		}
	case http.StatusOK:
		http.SetCookie(w, &http.Cookie{Name: "access", Value: freshAccess, Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, map[string]string{"detail": "refreshed"})
	default:
		writeJSON(w, b.refreshStatus, map[string]string{"detail": "Token is invalid or expired"})
	}
}

func (b *backend) protected(w http.ResponseWriter, r *http.Request) {
	b.protectedCalls.Add(1)
	body, _ := io.ReadAll(r.Body)
	b.bodiesLock.Lock()
	b.bodies = append(b.bodies, string(body))
	b.bodiesLock.Unlock()

	c, err := r.Cookie("access")
	if err != nil || c.Value != freshAccess || b.replayRejected {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": r.URL.Path, "request_id": r.Header.Get("X-Request-ID")})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newGateway(t *testing.T, b *backend, nav gateway.Navigator, maxPending int) *gateway.Gateway {
	t.Helper()
	store, err := credentials.NewCookieStore("")
	require.NoError(t, err)
	return gateway.New(testConfig{baseURL: b.server.URL, maxPending: maxPending}, store, nav)
}

func waitForRefresh(t *testing.T, b *backend) {
	t.Helper()
	select {
	case <-b.refreshStarted:
	case <-time.After(5 * time.Second):
		t.Fatal("refresh was never issued")
	}
}

func TestSend_Success(t *testing.T) {
	b := newBackend(t)
	nav := navigatorAt("/dashboard")
	g := newGateway(t, b, nav, 0)

	// Prime the session through a refresh so the store holds the fresh cookie.
	_, err := g.Send(context.Background(), gateway.Get("/profiles/my-profile/", nil))
	require.NoError(t, err)

	resp, err := g.Send(context.Background(), gateway.Get("/cards/virtual-cards/", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.Status)
	require.Equal(t, "/cards/virtual-cards/", resp.JSON().Get("path").String())
	require.NotEmpty(t, resp.JSON().Get("request_id").String())
	require.EqualValues(t, 1, b.refreshCalls.Load(), "a valid session needs no further refresh")
	nav.AssertNotCalled(t, "Navigate", mock.Anything)
}

func TestSend_SingleFlightRefresh(t *testing.T) {
	const calls = 3
	b := newBackend(t, withBlockedRefresh())
	nav := navigatorAt("/dashboard")
	g := newGateway(t, b, nav, 0)

	paths := []string{"/accounts/transactions/", "/cards/virtual-cards/", "/profiles/my-profile/"}
	type outcome struct {
		resp *gateway.Response
		err  error
	}
	results := make([]outcome, calls)
	var wg sync.WaitGroup
	for i, p := range paths {
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			resp, err := g.Send(context.Background(), gateway.Get(p, nil))
			results[i] = outcome{resp: resp, err: err}
		}(i, p)
	}

	waitForRefresh(t, b)
	require.Eventually(t, func() bool {
		return gateway.PendingCount(g) == calls-1
	}, 5*time.Second, 5*time.Millisecond)
	close(b.release)
	wg.Wait()

	require.EqualValues(t, 1, b.refreshCalls.Load())
	for i, r := range results {
		require.NoError(t, r.err)
		require.Equal(t, paths[i], r.resp.JSON().Get("path").String(), "each call reflects its own replay")
	}
	require.EqualValues(t, 2*calls, b.protectedCalls.Load(), "every call is sent once and replayed once")
	require.False(t, gateway.IsRefreshing(g))
	require.Zero(t, gateway.PendingCount(g))
	nav.AssertNotCalled(t, "Navigate", mock.Anything)
}

func TestSend_RefreshFailureRejectsQueue(t *testing.T) {
	const calls = 4
	b := newBackend(t, withBlockedRefresh(), withRefreshStatus(http.StatusUnauthorized))
	nav := navigatorAt("/dashboard")
	g := newGateway(t, b, nav, 0)

	errs := make([]error, calls)
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = g.Send(context.Background(), gateway.Get("/profiles/my-profile/", nil))
		}(i)
	}

	waitForRefresh(t, b)
	require.Eventually(t, func() bool {
		return gateway.PendingCount(g) == calls-1
	}, 5*time.Second, 5*time.Millisecond)
	close(b.release)
	wg.Wait()

	for _, err := range errs {
		require.ErrorIs(t, err, gateway.ErrAuthExpired)
		var expired *gateway.AuthExpiredError
		require.ErrorAs(t, err, &expired)
		var refreshErr *gateway.BackendError
		require.ErrorAs(t, expired.Cause, &refreshErr)
		require.Equal(t, http.StatusUnauthorized, refreshErr.Status)
	}
	require.EqualValues(t, 1, b.refreshCalls.Load())
	nav.AssertNumberOfCalls(t, "Navigate", 1)
	nav.AssertCalled(t, "Navigate", "/login")
	require.False(t, gateway.IsRefreshing(g))
}

func TestSend_NoSessionRedirectsToLogin(t *testing.T) {
	b := newBackend(t, withRefreshStatus(http.StatusUnauthorized))
	nav := navigatorAt("/dashboard")
	g := newGateway(t, b, nav, 0)

	_, err := g.Send(context.Background(), gateway.Get("/profiles/my-profile/", nil))
	require.ErrorIs(t, err, gateway.ErrAuthExpired)
	require.EqualValues(t, 1, b.refreshCalls.Load())
	nav.AssertCalled(t, "Navigate", "/login")
}

func TestSend_ReplayRejectedDoesNotLoop(t *testing.T) {
	b := newBackend(t, withReplayRejected())
	nav := navigatorAt("/dashboard")
	g := newGateway(t, b, nav, 0)

	_, err := g.Send(context.Background(), gateway.Get("/profiles/my-profile/", nil))
	require.ErrorIs(t, err, gateway.ErrAuthExpired)

	var expired *gateway.AuthExpiredError
	require.ErrorAs(t, err, &expired)
	require.Nil(t, expired.Cause)
	require.EqualValues(t, 1, b.refreshCalls.Load(), "the replay must not refresh again")
	require.EqualValues(t, 2, b.protectedCalls.Load())
	nav.AssertNotCalled(t, "Navigate", mock.Anything)
}

func TestSend_RedirectSuppressedOnLoginPage(t *testing.T) {
	b := newBackend(t, withRefreshStatus(http.StatusBadRequest))
	nav := navigatorAt("/login")
	g := newGateway(t, b, nav, 0)

	_, err := g.Send(context.Background(), gateway.Get("/auth/users/me/", nil))
	require.ErrorIs(t, err, gateway.ErrAuthExpired)
	nav.AssertNotCalled(t, "Navigate", mock.Anything)
}

func TestSend_PassThroughErrors(t *testing.T) {
	b := newBackend(t)
	nav := navigatorAt("/dashboard")
	g := newGateway(t, b, nav, 0)

	t.Run("403", func(t *testing.T) {
		_, err := g.Send(context.Background(), gateway.Post("/accounts/deposit/", map[string]string{"amount": "100.00"}))
		var backendErr *gateway.BackendError
		require.ErrorAs(t, err, &backendErr)
		require.Equal(t, http.StatusForbidden, backendErr.StatusCode())
		require.Equal(t, "You do not have permission to perform this action.", backendErr.Message())
		require.JSONEq(t, `{"detail":"You do not have permission to perform this action."}`, string(backendErr.Body))
		require.False(t, errors.Is(err, gateway.ErrAuthExpired))
	})

	t.Run("500", func(t *testing.T) {
		_, err := g.Send(context.Background(), gateway.Get("/accounts/boom/", nil))
		var backendErr *gateway.BackendError
		require.ErrorAs(t, err, &backendErr)
		require.Equal(t, http.StatusInternalServerError, backendErr.Status)
		require.Equal(t, "ledger offline", backendErr.JSON().Get("error").String())
	})

	require.Zero(t, b.refreshCalls.Load())
	nav.AssertNotCalled(t, "Navigate", mock.Anything)
}

func TestSend_NetworkError(t *testing.T) {
	b := newBackend(t)
	nav := navigatorAt("/dashboard")
	g := newGateway(t, b, nav, 0)
	b.server.Close()

	_, err := g.Send(context.Background(), gateway.Get("/profiles/my-profile/", nil))
	var netErr *gateway.NetworkError
	require.ErrorAs(t, err, &netErr)
	require.Equal(t, "/profiles/my-profile/", netErr.Path)
	nav.AssertNotCalled(t, "Navigate", mock.Anything)
}

func TestSend_RefreshNetworkFailure(t *testing.T) {
	b := newBackend(t, withBlockedRefresh(), withRefreshStatus(refreshHangsUp))
	nav := navigatorAt("/dashboard")
	g := newGateway(t, b, nav, 0)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = g.Send(context.Background(), gateway.Get("/profiles/my-profile/", nil))
		}(i)
	}
	waitForRefresh(t, b)
	require.Eventually(t, func() bool { return gateway.PendingCount(g) == 1 }, 5*time.Second, 5*time.Millisecond)
	close(b.release)
	wg.Wait()

	for _, err := range errs {
		var netErr *gateway.NetworkError
		require.ErrorAs(t, err, &netErr)
		require.Equal(t, "/auth/refresh/", netErr.Path)
		require.False(t, errors.Is(err, gateway.ErrAuthExpired))
	}
	nav.AssertNotCalled(t, "Navigate", mock.Anything)
	require.False(t, gateway.IsRefreshing(g))
}

func TestSend_PendingQueueBounded(t *testing.T) {
	b := newBackend(t, withBlockedRefresh())
	nav := navigatorAt("/dashboard")
	g := newGateway(t, b, nav, 1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = g.Send(context.Background(), gateway.Get("/profiles/my-profile/", nil))
		}(i)
		if i == 0 {
			waitForRefresh(t, b)
		}
	}
	require.Eventually(t, func() bool { return gateway.PendingCount(g) == 1 }, 5*time.Second, 5*time.Millisecond)

	_, err := g.Send(context.Background(), gateway.Get("/cards/virtual-cards/", nil))
	require.ErrorIs(t, err, gateway.ErrPendingQueueFull)

	close(b.release)
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, b.refreshCalls.Load())
}

func TestSend_CancelledWaiter(t *testing.T) {
	b := newBackend(t, withBlockedRefresh())
	nav := navigatorAt("/dashboard")
	g := newGateway(t, b, nav, 0)

	ownerDone := make(chan error, 1)
	go func() {
		_, err := g.Send(context.Background(), gateway.Get("/profiles/my-profile/", nil))
		ownerDone <- err
	}()
	waitForRefresh(t, b)

	ctx, cancel := context.WithCancel(context.Background())
	waiterDone := make(chan error, 1)
	go func() {
		_, err := g.Send(ctx, gateway.Get("/cards/virtual-cards/", nil))
		waiterDone <- err
	}()
	require.Eventually(t, func() bool { return gateway.PendingCount(g) == 1 }, 5*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-waiterDone:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled waiter did not return")
	}

	close(b.release)
	require.NoError(t, <-ownerDone)
	require.Zero(t, gateway.PendingCount(g))
}

func TestSend_OwnerCancellationDoesNotAbortRefresh(t *testing.T) {
	b := newBackend(t, withBlockedRefresh())
	nav := navigatorAt("/dashboard")
	g := newGateway(t, b, nav, 0)

	ctx, cancel := context.WithCancel(context.Background())
	ownerDone := make(chan error, 1)
	go func() {
		_, err := g.Send(ctx, gateway.Get("/profiles/my-profile/", nil))
		ownerDone <- err
	}()
	waitForRefresh(t, b)

	waiterDone := make(chan error, 1)
	go func() {
		_, err := g.Send(context.Background(), gateway.Get("/cards/virtual-cards/", nil))
		waiterDone <- err
	}()
	require.Eventually(t, func() bool { return gateway.PendingCount(g) == 1 }, 5*time.Second, 5*time.Millisecond)

	cancel()
	close(b.release)

	require.NoError(t, <-waiterDone, "the waiter inherits the refresh, not the owner's cancellation")
	require.ErrorIs(t, <-ownerDone, context.Canceled)
	require.EqualValues(t, 1, b.refreshCalls.Load())
}

func TestSend_ReplaySendsSameBody(t *testing.T) {
	b := newBackend(t)
	g := newGateway(t, b, navigatorAt("/transfer"), 0)

	payload := map[string]string{"recipient_account_number": "0123456789", "amount": "25.00"}
	_, err := g.Send(context.Background(), gateway.Post("/accounts/transfer/initiate/", payload))
	require.NoError(t, err)

	b.bodiesLock.Lock()
	defer b.bodiesLock.Unlock()
	require.Len(t, b.bodies, 2)
	require.Equal(t, b.bodies[0], b.bodies[1])
	require.JSONEq(t, `{"recipient_account_number":"0123456789","amount":"25.00"}`, b.bodies[0])
}

func TestSend_EncodeError(t *testing.T) {
	b := newBackend(t)
	g := newGateway(t, b, navigatorAt("/"), 0)

	_, err := g.Send(context.Background(), gateway.Post("/accounts/deposit/", make(chan int)))
	require.Error(t, err)
	require.Zero(t, b.protectedCalls.Load())
}

func TestClearCredentials(t *testing.T) {
	b := newBackend(t)
	g := newGateway(t, b, navigatorAt("/"), 0)

	_, err := g.Send(context.Background(), gateway.Get("/profiles/my-profile/", nil))
	require.NoError(t, err)
	require.NoError(t, g.ClearCredentials())

	_, err = g.Send(context.Background(), gateway.Get("/profiles/my-profile/", nil))
	require.NoError(t, err)
	require.EqualValues(t, 2, b.refreshCalls.Load(), "a cleared session has to be refreshed again")
}
