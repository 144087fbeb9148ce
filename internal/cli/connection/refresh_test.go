package connection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshitprakash/max-education-software-sub000/internal/core/domain"
	"github.com/harshitprakash/max-education-software-sub000/internal/storage/tokenstore"
)

const profilePath = "/api/students/profile"

// fakeBackend accepts one valid access token on profilePath and serves
// refreshes on DefaultRefreshPath.
type fakeBackend struct {
	t   *testing.T
	srv *httptest.Server

	mu         sync.Mutex
	validToken string

	// refreshStatus and refreshData shape the refresh response.
	refreshStatus int
	refreshData   map[string]string

	// release, when non-nil, holds every refresh until closed.
	release chan struct{}

	// beforeReply runs inside the profile handler before a 401 is sent.
	beforeReply func(auth string)

	refreshCalls atomic.Int32
	profileCalls atomic.Int32
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	b := &fakeBackend{
		t:             t,
		validToken:    "access-2",
		refreshStatus: http.StatusOK,
		refreshData:   map[string]string{"accessToken": "access-2", "refreshToken": "refresh-2"},
	}

	mux := http.NewServeMux()
	mux.HandleFunc(DefaultRefreshPath, b.handleRefresh)
	mux.HandleFunc(profilePath, b.handleProfile)
	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	b.refreshCalls.Add(1)

	if _, ok := r.Header["Authorization"]; ok {
		b.t.Error("refresh request must not carry Authorization")
	}
	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["refreshToken"] == "" {
		b.t.Errorf("refresh body = %v (err %v), want refreshToken", body, err)
	}

	if b.release != nil {
		<-b.release
	}

	w.WriteHeader(b.refreshStatus)
	json.NewEncoder(w).Encode(map[string]any{"status": b.refreshStatus, "data": b.refreshData})
}

func (b *fakeBackend) handleProfile(w http.ResponseWriter, r *http.Request) {
	b.profileCalls.Add(1)

	auth := r.Header.Get("Authorization")
	b.mu.Lock()
	valid := auth == "Bearer "+b.validToken
	b.mu.Unlock()

	if !valid {
		if b.beforeReply != nil {
			b.beforeReply(auth)
		}
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	fmt.Fprint(w, `{"status":200,"data":{"id":"s1"}}`)
}

func (b *fakeBackend) setValidToken(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.validToken = token
}

func newRefreshDispatcher(t *testing.T, b *fakeBackend, tokens domain.Tokens) (*Dispatcher, *tokenstore.Store) {
	t.Helper()

	store := tokenstore.New(tokenstore.NewMemoryBackend())
	if !tokens.Empty() {
		require.NoError(t, store.SetTokens(tokens))
	}
	d, err := NewDispatcher(Config{BaseURL: b.srv.URL, RefreshTimeout: 5 * time.Second}, store)
	require.NoError(t, err)
	return d, store
}

var staleTokens = domain.Tokens{AccessToken: "access-1", RefreshToken: "refresh-1"}

func TestDispatcher_ConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	b := newFakeBackend(t)
	b.release = make(chan struct{})
	d, store := newRefreshDispatcher(t, b, staleTokens)

	const n = 8
	var wg sync.WaitGroup
	statuses := make([]int, n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := d.Get(context.Background(), profilePath)
			errs[i] = err
			if resp != nil {
				statuses[i] = resp.StatusCode
			}
		}(i)
	}

	require.Eventually(t, func() bool { return d.RefreshWaiters() == n }, 5*time.Second, 5*time.Millisecond)
	state, _ := d.RefreshState()
	assert.Equal(t, RefreshRefreshing, state)

	close(b.release)
	wg.Wait()

	assert.Equal(t, int32(1), b.refreshCalls.Load(), "exactly one refresh call")
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, http.StatusOK, statuses[i])
	}
	assert.Equal(t, int32(2*n), b.profileCalls.Load(), "each request issued once and retried once")
	assert.Equal(t, domain.Tokens{AccessToken: "access-2", RefreshToken: "refresh-2"}, store.Tokens())

	state, lastErr := d.RefreshState()
	assert.Equal(t, RefreshIdle, state)
	assert.NoError(t, lastErr)
	assert.Zero(t, d.RefreshWaiters())
}

func TestDispatcher_SecondUnauthorizedEndsSession(t *testing.T) {
	b := newFakeBackend(t)
	b.setValidToken("never-issued")
	d, store := newRefreshDispatcher(t, b, staleTokens)

	var ended []error
	d.OnSessionEnd(func(err error) { ended = append(ended, err) })

	_, err := d.Get(context.Background(), profilePath)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	assert.Equal(t, int32(1), b.refreshCalls.Load())
	assert.Equal(t, int32(2), b.profileCalls.Load(), "no loop after the retry")
	assert.False(t, store.HasToken())
	assert.Empty(t, store.GetRefreshToken())
	require.Len(t, ended, 1)
	assert.True(t, errors.Is(ended[0], domain.ErrUnauthorized))
}

func TestDispatcher_RefreshRejectedEndsSession(t *testing.T) {
	b := newFakeBackend(t)
	b.refreshStatus = http.StatusUnauthorized
	d, store := newRefreshDispatcher(t, b, staleTokens)

	var ended atomic.Int32
	d.OnSessionEnd(func(err error) {
		ended.Add(1)
		assert.True(t, errors.Is(err, domain.ErrSessionExpired))
	})

	_, err := d.Get(context.Background(), profilePath)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSessionExpired))
	assert.True(t, errors.Is(err, domain.ErrRefreshRejected))
	assert.Equal(t, domain.ErrSessionExpired.Message, domain.UserMessage(err))
	assert.True(t, store.Tokens().Empty())
	assert.Equal(t, int32(1), ended.Load())

	state, lastErr := d.RefreshState()
	assert.Equal(t, RefreshFailed, state)
	assert.True(t, errors.Is(lastErr, domain.ErrRefreshRejected))
}

func TestDispatcher_RefreshWithoutRefreshToken(t *testing.T) {
	b := newFakeBackend(t)
	d, store := newRefreshDispatcher(t, b, domain.Tokens{AccessToken: "access-1"})

	_, err := d.Get(context.Background(), profilePath)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSessionExpired))
	assert.True(t, errors.Is(err, domain.ErrNoRefreshToken))
	assert.Zero(t, b.refreshCalls.Load(), "no network call without a refresh token")
	assert.False(t, store.HasToken())
}

func TestDispatcher_LateUnauthorizedRetriesWithoutRefresh(t *testing.T) {
	b := newFakeBackend(t)
	d, store := newRefreshDispatcher(t, b, staleTokens)

	// Another caller completes a refresh while this request is in flight.
	b.beforeReply = func(auth string) {
		if auth == "Bearer access-1" {
			assert.NoError(t, store.SetTokens(domain.Tokens{AccessToken: "access-2", RefreshToken: "refresh-2"}))
		}
	}

	resp, err := d.Get(context.Background(), profilePath)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, b.refreshCalls.Load())
}

func TestDispatcher_RefreshTokenDeduplicatesCallers(t *testing.T) {
	b := newFakeBackend(t)
	b.release = make(chan struct{})
	d, _ := newRefreshDispatcher(t, b, staleTokens)

	type result struct {
		tokens domain.Tokens
		err    error
	}
	results := make(chan result, 2)
	for i := 0; i < 2; i++ {
		go func() {
			tokens, err := d.RefreshToken(context.Background())
			results <- result{tokens, err}
		}()
	}

	require.Eventually(t, func() bool { return d.RefreshWaiters() == 2 }, 5*time.Second, 5*time.Millisecond)
	close(b.release)

	first, second := <-results, <-results
	require.NoError(t, first.err)
	require.NoError(t, second.err)
	assert.Equal(t, first.tokens, second.tokens)
	assert.Equal(t, "access-2", first.tokens.AccessToken)
	assert.Equal(t, int32(1), b.refreshCalls.Load())
}

func TestDispatcher_RefreshSurvivesCallerCancellation(t *testing.T) {
	b := newFakeBackend(t)
	b.release = make(chan struct{})
	d, store := newRefreshDispatcher(t, b, staleTokens)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := d.RefreshToken(ctx)
		errCh <- err
	}()

	require.Eventually(t, func() bool { return d.RefreshWaiters() == 1 }, 5*time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	close(b.release)
	require.Eventually(t, func() bool { return store.GetAccessToken() == "access-2" }, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, "refresh-2", store.GetRefreshToken())
}

func TestDispatcher_RefreshIncompletePairRejected(t *testing.T) {
	b := newFakeBackend(t)
	b.refreshData = map[string]string{"accessToken": "access-2"}
	d, store := newRefreshDispatcher(t, b, staleTokens)

	_, err := d.RefreshToken(context.Background())
	assert.True(t, errors.Is(err, domain.ErrRefreshRejected))
	assert.True(t, store.Tokens().Empty(), "failed refresh clears tokens")
}

func TestDispatcher_RefreshAfterFailureStartsOver(t *testing.T) {
	b := newFakeBackend(t)
	d, store := newRefreshDispatcher(t, b, domain.Tokens{AccessToken: "access-1"})

	_, err := d.RefreshToken(context.Background())
	require.ErrorIs(t, err, domain.ErrNoRefreshToken)
	state, _ := d.RefreshState()
	require.Equal(t, RefreshFailed, state)

	require.NoError(t, store.SetTokens(staleTokens))
	tokens, err := d.RefreshToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-2", tokens.AccessToken)

	state, _ = d.RefreshState()
	assert.Equal(t, RefreshIdle, state)
}

func TestDispatcher_LogoutDuringRefreshStaysLoggedOut(t *testing.T) {
	b := newFakeBackend(t)
	b.release = make(chan struct{})
	d, store := newRefreshDispatcher(t, b, staleTokens)

	var ended atomic.Int32
	d.OnSessionEnd(func(error) { ended.Add(1) })

	errCh := make(chan error, 1)
	go func() {
		_, err := d.RefreshToken(context.Background())
		errCh <- err
	}()
	require.Eventually(t, func() bool { return d.RefreshWaiters() == 1 }, 5*time.Second, 5*time.Millisecond)

	require.NoError(t, store.ClearTokens())
	close(b.release)

	err := <-errCh
	assert.True(t, errors.Is(err, domain.ErrSessionExpired))
	assert.True(t, errors.Is(err, errSessionChanged))
	assert.False(t, store.HasToken(), "the exchanged pair must not be stored after logout")
	assert.True(t, store.Tokens().Empty())
	assert.Zero(t, ended.Load(), "logout already ended the session")
}

func TestDispatcher_LoginDuringFailedRefreshKeepsNewSession(t *testing.T) {
	b := newFakeBackend(t)
	b.release = make(chan struct{})
	b.refreshStatus = http.StatusUnauthorized
	d, store := newRefreshDispatcher(t, b, staleTokens)

	var ended atomic.Int32
	d.OnSessionEnd(func(error) { ended.Add(1) })

	errCh := make(chan error, 1)
	go func() {
		_, err := d.Get(context.Background(), profilePath)
		errCh <- err
	}()
	require.Eventually(t, func() bool { return d.RefreshWaiters() == 1 }, 5*time.Second, 5*time.Millisecond)

	fresh := domain.Tokens{AccessToken: "access-9", RefreshToken: "refresh-9"}
	require.NoError(t, store.SetTokens(fresh))
	close(b.release)

	err := <-errCh
	assert.True(t, errors.Is(err, domain.ErrSessionExpired))
	assert.Equal(t, fresh, store.Tokens(), "a failed refresh must not clear a newer login")
	assert.Zero(t, ended.Load())
}

func TestDispatcher_PicksUpPairRotatedElsewhere(t *testing.T) {
	b := newFakeBackend(t)
	shared := tokenstore.NewMemoryBackend()

	mine := tokenstore.New(shared)
	require.NoError(t, mine.SetTokens(staleTokens))
	d, err := NewDispatcher(Config{BaseURL: b.srv.URL}, mine)
	require.NoError(t, err)
	require.Equal(t, "access-1", mine.GetAccessToken())

	// Another process sharing the session refreshed in the meantime.
	other := tokenstore.New(shared)
	require.NoError(t, other.SetTokens(domain.Tokens{AccessToken: "access-2", RefreshToken: "refresh-2"}))

	resp, err := d.Get(context.Background(), profilePath)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, b.refreshCalls.Load(), "the rotated pair is used instead of a second exchange")
	assert.Equal(t, "refresh-2", mine.GetRefreshToken())
}

func TestRefreshState_String(t *testing.T) {
	assert.Equal(t, "idle", RefreshIdle.String())
	assert.Equal(t, "refreshing", RefreshRefreshing.String())
	assert.Equal(t, "failed", RefreshFailed.String())
	assert.Equal(t, "unknown", RefreshState(9).String())
}
