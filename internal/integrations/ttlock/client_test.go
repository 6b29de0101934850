package ttlock

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
)

type fakeLock struct {
	tokenCalls  int32
	rejectFirst int32

	mu       sync.Mutex
	lastForm map[string]string
}

func (f *fakeLock) form(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastForm[key]
}

func (f *fakeLock) handler(t *testing.T) http.Handler {
	sum := md5.Sum([]byte("secret"))
	wantPassword := hex.EncodeToString(sum[:])

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "password", r.PostForm.Get("grant_type"))
		assert.Equal(t, "studio", r.PostForm.Get("username"))
		assert.Equal(t, wantPassword, r.PostForm.Get("password"))
		assert.Equal(t, "cid", r.PostForm.Get("client_id"))

		n := atomic.AddInt32(&f.tokenCalls, 1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"tok-%d","token_type":"Bearer","expires_in":7776000}`, n)
	})
	mux.HandleFunc("/v3/keyboardPwd/add", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.mu.Lock()
		f.lastForm = map[string]string{}
		for k := range r.PostForm {
			f.lastForm[k] = r.PostForm.Get(k)
		}
		f.mu.Unlock()
		if atomic.CompareAndSwapInt32(&f.rejectFirst, 1, 0) {
			_, _ = w.Write([]byte(`{"errcode":10004,"errmsg":"invalid grant"}`))
			return
		}
		_, _ = w.Write([]byte(`{"keyboardPwdId":555}`))
	})
	mux.HandleFunc("/v3/keyboardPwd/delete", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("keyboardPwdId") != "555" {
			_, _ = w.Write([]byte(`{"errcode":-3008,"errmsg":"passcode not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"errcode":0,"errmsg":"none"}`))
	})
	return mux
}

func newTestClient(t *testing.T, lock *fakeLock) *Client {
	t.Helper()
	srv := httptest.NewServer(lock.handler(t))
	t.Cleanup(srv.Close)

	return NewClient(Config{
		BaseURL:      srv.URL,
		ClientID:     "cid",
		ClientSecret: "csecret",
		Username:     "studio",
		Password:     "secret",
		LockID:       42,
		Timeout:      time.Second,
	}, NewMemoryTokenCache(), logger.NewNop())
}

func TestClient_AddPasscode_ReusesToken(t *testing.T) {
	lock := &fakeLock{}
	c := newTestClient(t, lock)
	ctx := context.Background()

	from := time.Date(2030, time.January, 1, 9, 45, 0, 0, time.UTC)
	until := time.Date(2030, time.January, 1, 11, 15, 0, 0, time.UTC)

	pc, err := c.AddPasscode(ctx, "123456", "reserva-1", from, until)
	require.NoError(t, err)
	assert.Equal(t, "555", pc.ExternalID)
	assert.Equal(t, "123456", pc.Code)

	assert.Equal(t, "42", lock.form("lockId"))
	assert.Equal(t, "tok-1", lock.form("accessToken"))
	assert.Equal(t, "2", lock.form("addType"))
	assert.Equal(t, fmt.Sprint(from.UnixMilli()), lock.form("startDate"))
	assert.Equal(t, fmt.Sprint(until.UnixMilli()), lock.form("endDate"))

	_, err = c.AddPasscode(ctx, "654321", "reserva-2", from, until)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&lock.tokenCalls))
}

func TestClient_RefreshesRejectedToken(t *testing.T) {
	lock := &fakeLock{rejectFirst: 1}
	c := newTestClient(t, lock)

	_, err := c.AddPasscode(context.Background(), "123456", "reserva-1", time.Now(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&lock.tokenCalls))
	assert.Equal(t, "tok-2", lock.form("accessToken"))
}

func TestClient_DeletePasscode(t *testing.T) {
	lock := &fakeLock{}
	c := newTestClient(t, lock)
	ctx := context.Background()

	require.NoError(t, c.DeletePasscode(ctx, "555"))

	err := c.DeletePasscode(ctx, "999")
	assert.ErrorIs(t, err, ErrVendor)
}

func TestClient_UpstreamDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, ClientID: "cid", Timeout: time.Second}, nil, logger.NewNop())
	_, err := c.AddPasscode(context.Background(), "123456", "x", time.Now(), time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, ErrAuth)
}

func TestMemoryTokenCache_Expiry(t *testing.T) {
	cache := NewMemoryTokenCache()
	now := time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	tok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, tok)

	require.NoError(t, cache.Set(ctx, "k", &oauth2.Token{AccessToken: "abc"}, time.Minute))
	tok, err = cache.Get(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.Equal(t, "abc", tok.AccessToken)

	now = now.Add(2 * time.Minute)
	tok, err = cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, tok)
}
