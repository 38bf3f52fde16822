package siege

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testLoginToken = "dGVzdDp0ZXN0"
	testProfileID  = "8a2f2bbc-3f2b-4e3c-9d7a-0c5f7f6b8e11"
)

// fakeUbi stands in for both the identity service and the game data service.
type fakeUbi struct {
	t      *testing.T
	logins int32
	mu     sync.Mutex
	calls  []string
	data   http.HandlerFunc
	login  http.HandlerFunc
}

func newFakeUbi(t *testing.T) (*fakeUbi, *httptest.Server) {
	f := &fakeUbi{t: t}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls = append(f.calls, r.Method+" "+r.URL.Path)
		f.mu.Unlock()

		if r.URL.Path == "/login" {
			n := atomic.AddInt32(&f.logins, 1)
			if f.login != nil {
				f.login(w, r)
				return
			}
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "Basic "+testLoginToken, r.Header.Get("Authorization"))
			assert.Equal(t, "uplay", r.Header.Get("Ubi-RequestedPlatformType"))
			assert.Equal(t, DefaultAppID, r.Header.Get("Ubi-AppId"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			writeJSON(w, http.StatusOK, map[string]any{
				"ticket":    "ticket-" + string(rune('0'+n)),
				"sessionId": "session-" + string(rune('0'+n)),
			})
			return
		}
		f.data(w, r)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeUbi) loginCount() int {
	return int(atomic.LoadInt32(&f.logins))
}

func (f *fakeUbi) recordedCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.calls...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(srv *httptest.Server, opts ...Option) *Client {
	logger, _ := test.NewNullLogger()
	opts = append([]Option{WithLogger(logger)}, opts...)
	return NewClient(Config{
		LoginToken: testLoginToken,
		LoginURL:   srv.URL + "/login",
		SearchURL:  srv.URL + "/v2/profiles",
		PublicURL:  srv.URL,
		Timeout:    5 * time.Second,
	}, opts...)
}

func TestFetch_LazyLoginBeforeFirstRequest(t *testing.T) {
	f, srv := newFakeUbi(t)
	f.data = func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Ubi_v1 t=ticket-1", r.Header.Get("Authorization"))
		assert.Equal(t, "session-1", r.Header.Get("ubi-sessionid"))
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, DefaultAppID, r.Header.Get("Ubi-AppId"))
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}

	c := newTestClient(srv)
	_, ok := c.store.Credentials()
	require.False(t, ok)

	body, err := c.FetchRaw(context.Background(), srv.URL+"/anything", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))

	assert.Equal(t, []string{"POST /login", "GET /anything"}, f.recordedCalls())

	_, err = c.FetchRaw(context.Background(), srv.URL+"/anything", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, f.loginCount())
}

func TestLogin_FailureKeepsCredentialsUnset(t *testing.T) {
	f, srv := newFakeUbi(t)
	f.login = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"errorCode": 1, "message": "Invalid credentials"})
	}
	f.data = func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected data request %s", r.URL)
	}

	c := newTestClient(srv)
	_, err := c.GetProfiles(context.Background(), "Jollz", "")
	require.Error(t, err)

	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
	assert.Equal(t, "Invalid credentials", authErr.Payload["message"])

	_, ok := c.store.Credentials()
	assert.False(t, ok)
}

func TestLogin_FailureDoesNotReplaceCredentials(t *testing.T) {
	f, srv := newFakeUbi(t)
	f.login = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	store := NewMemoryStore()
	store.SetCredentials(Credentials{Ticket: "old", SessionID: "old-session"})
	c := newTestClient(srv, WithCredentialStore(store))

	err := c.Login(context.Background())
	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusServiceUnavailable, authErr.StatusCode)

	creds, ok := store.Credentials()
	require.True(t, ok)
	assert.Equal(t, Credentials{Ticket: "old", SessionID: "old-session"}, creds)
}

func TestLogin_MissingTicket(t *testing.T) {
	f, srv := newFakeUbi(t)
	f.login = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"sessionId": "s"})
	}

	c := newTestClient(srv)
	var authErr *AuthenticationError
	require.ErrorAs(t, c.Login(context.Background()), &authErr)
}

func TestFetch_ReloginOnUnauthorized(t *testing.T) {
	f, srv := newFakeUbi(t)
	var requests int32
	f.data = func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requests, 1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "Ubi_v1 t=ticket-2", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"retried": true})
	}

	c := newTestClient(srv)
	var out map[string]bool
	require.NoError(t, c.FetchJSON(context.Background(), srv.URL+"/data", nil, &out))

	assert.True(t, out["retried"])
	assert.Equal(t, 2, f.loginCount())
	assert.Equal(t, []string{"POST /login", "GET /data", "POST /login", "GET /data"}, f.recordedCalls())
}

func TestFetch_UnauthorizedAfterRelogin(t *testing.T) {
	f, srv := newFakeUbi(t)
	f.data = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}

	c := newTestClient(srv)
	_, err := c.FetchRaw(context.Background(), srv.URL+"/data", nil)

	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, 2, f.loginCount())
}

func TestFetch_WithoutRelogin(t *testing.T) {
	f, srv := newFakeUbi(t)
	f.data = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}

	c := newTestClient(srv)
	_, err := c.FetchRaw(context.Background(), srv.URL+"/data", nil, WithoutRelogin())

	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, 1, f.loginCount())
}

func TestFetch_ErrorKinds(t *testing.T) {
	tests := []struct {
		status int
		kind   Kind
	}{
		{http.StatusNotFound, KindNotFound},
		{http.StatusForbidden, KindUnauthorized},
		{http.StatusTooManyRequests, KindTransient},
		{http.StatusBadGateway, KindTransient},
		{http.StatusBadRequest, KindFailed},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			f, srv := newFakeUbi(t)
			f.data = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"message":"nope"}`))
			}

			c := newTestClient(srv)
			_, err := c.FetchRaw(context.Background(), srv.URL+"/data", nil)

			var respErr *ResponseError
			require.ErrorAs(t, err, &respErr)
			assert.Equal(t, tt.kind, respErr.Kind)
			assert.Equal(t, tt.status, respErr.StatusCode)
			assert.JSONEq(t, `{"message":"nope"}`, string(respErr.Body))
			assert.Equal(t, 1, f.loginCount())
		})
	}
}

func TestFetch_HeadersAndParams(t *testing.T) {
	f, srv := newFakeUbi(t)
	f.data = func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "custom-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "fr-FR", r.Header.Get("Ubi-LocaleCode"))
		assert.Equal(t, "Ubi_v1 t=ticket-1", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "1", q.Get("keep"))
		_, present := q["empty"]
		assert.False(t, present)
		writeJSON(w, http.StatusOK, map[string]any{})
	}

	c := newTestClient(srv)
	params := map[string][]string{"keep": {"1"}, "empty": {""}}
	_, err := c.FetchRaw(context.Background(), srv.URL+"/data", params,
		WithHeader("User-Agent", "custom-agent"),
		WithHeader("Ubi-LocaleCode", "fr-FR"),
	)
	require.NoError(t, err)

	// Headers from one call do not leak into the next.
	f.data = func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		assert.Empty(t, r.Header.Get("Ubi-LocaleCode"))
		writeJSON(w, http.StatusOK, map[string]any{})
	}
	_, err = c.FetchRaw(context.Background(), srv.URL+"/data", nil)
	require.NoError(t, err)
}

func TestLogin_ConcurrentCallersShareOneRequest(t *testing.T) {
	f, srv := newFakeUbi(t)
	release := make(chan struct{})
	f.login = func(w http.ResponseWriter, r *http.Request) {
		<-release
		writeJSON(w, http.StatusOK, map[string]any{"ticket": "shared", "sessionId": "shared"})
	}

	c := newTestClient(srv)
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- c.Login(context.Background())
		}()
	}

	require.Eventually(t, func() bool { return f.loginCount() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, f.loginCount())

	creds, ok := c.store.Credentials()
	require.True(t, ok)
	assert.Equal(t, "shared", creds.Ticket)
}

func TestLogin_CancelledCallerDoesNotFailOthers(t *testing.T) {
	f, srv := newFakeUbi(t)
	release := make(chan struct{})
	f.login = func(w http.ResponseWriter, r *http.Request) {
		<-release
		writeJSON(w, http.StatusOK, map[string]any{"ticket": "shared", "sessionId": "shared"})
	}

	c := newTestClient(srv)
	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() { first <- c.Login(ctx) }()
	require.Eventually(t, func() bool { return f.loginCount() == 1 }, time.Second, 5*time.Millisecond)

	second := make(chan error, 1)
	go func() { second <- c.Login(context.Background()) }()
	time.Sleep(50 * time.Millisecond)

	cancel()
	select {
	case err := <-first:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(release)
	select {
	case err := <-second:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("second caller did not return")
	}
	assert.Equal(t, 1, f.loginCount())

	creds, ok := c.store.Credentials()
	require.True(t, ok)
	assert.Equal(t, "shared", creds.Ticket)
}

func TestFetch_StaleUnauthorizedReusesNewTicket(t *testing.T) {
	f, srv := newFakeUbi(t)
	var stale int32
	bothSent := make(chan struct{})
	retried := make(chan struct{})
	var retriedOnce sync.Once
	f.data = func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Ubi_v1 t=ticket-1" {
			assert.Equal(t, "Ubi_v1 t=ticket-2", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
			retriedOnce.Do(func() { close(retried) })
			return
		}
		// the first rejection goes out once both requests are in flight,
		// the second only after the first caller's retry succeeded
		if atomic.AddInt32(&stale, 1) == 2 {
			close(bothSent)
			select {
			case <-retried:
			case <-time.After(5 * time.Second):
				t.Error("retry with the new ticket never arrived")
			}
		} else {
			<-bothSent
		}
		w.WriteHeader(http.StatusUnauthorized)
	}

	c := newTestClient(srv)
	require.NoError(t, c.Login(context.Background()))

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.FetchRaw(context.Background(), srv.URL+"/data", nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 2, f.loginCount())
}

func TestFetch_LogsRequests(t *testing.T) {
	f, srv := newFakeUbi(t)
	f.data = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}

	logger, hook := test.NewNullLogger()
	c := newTestClient(srv, WithLogger(logger))
	_, err := c.FetchRaw(context.Background(), srv.URL+"/data", nil)
	require.True(t, IsNotFound(err))

	var gets, warnings int
	for _, entry := range hook.AllEntries() {
		if entry.Data["event"] != "siege_get" {
			continue
		}
		switch entry.Level {
		case logrus.InfoLevel:
			assert.True(t, strings.HasPrefix(entry.Message, "GET => "))
			gets++
		case logrus.WarnLevel:
			assert.Equal(t, http.StatusNotFound, entry.Data["status"])
			warnings++
		}
	}
	assert.Equal(t, 1, gets)
	assert.Equal(t, 1, warnings)
}
