package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	jar, err := NewJar("")
	require.NoError(t, err)

	c, err := New(srv.URL, jar, 5*time.Second, testLogger())
	require.NoError(t, err)
	return c
}

func setAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "tok", Path: "/"})
	http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: "ref", Path: "/"})
}

func TestRetryOnce_SecondUnauthorizedSurfaced(t *testing.T) {
	var meCalls, refreshCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("GET /user/me", func(w http.ResponseWriter, r *http.Request) {
		meCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("POST /auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		setAuthCookies(w)
	})

	c := newTestClient(t, mux)

	_, err := c.CurrentUser(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err), "second 401 must be surfaced verbatim, got %v", err)

	assert.Equal(t, int32(2), meCalls.Load(), "original call + exactly one retry")
	assert.Equal(t, int32(1), refreshCalls.Load(), "exactly one renewal attempt")
}

func TestAuthEndpointsNeverTriggerRefresh(t *testing.T) {
	tests := []struct {
		name string
		call func(c *Client) error
	}{
		{"login", func(c *Client) error {
			return c.Login(context.Background(), "a@b.c", "pw")
		}},
		{"register", func(c *Client) error {
			return c.Register(context.Background(), "a@b.c", "pw", "pw")
		}},
		{"refresh", func(c *Client) error {
			return c.RefreshToken(context.Background())
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var refreshCalls atomic.Int32

			mux := http.NewServeMux()
			mux.HandleFunc("POST /auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
				refreshCalls.Add(1)
				w.WriteHeader(http.StatusUnauthorized)
			})
			mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			})

			c := newTestClient(t, mux)

			err := tt.call(c)
			require.Error(t, err)
			assert.True(t, IsUnauthorized(err))

			want := int32(0)
			if tt.name == "refresh" {
				want = 1 // the explicit call itself, no second one
			}
			assert.Equal(t, want, refreshCalls.Load())
		})
	}
}

func TestRenewalFailureSurfacedToCaller(t *testing.T) {
	var meCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("GET /user/me", func(w http.ResponseWriter, r *http.Request) {
		meCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("POST /auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "refresh token expired"}`, http.StatusUnauthorized)
	})

	c := newTestClient(t, mux)

	_, err := c.CurrentUser(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Contains(t, err.Error(), "renew credential")
	assert.Equal(t, int32(1), meCalls.Load(), "no retry after failed renewal")
}

func TestRefreshedCredentialUsedOnRetry(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user/me", func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie("access_token")
		if err != nil || ck.Value != "fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 7, "email": "a@b.c", "is_active": true}`))
	})
	mux.HandleFunc("POST /auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("refresh_token"); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "fresh", Path: "/"})
	})

	c := newTestClient(t, mux)
	c.jar.SetCookies(nil, []*http.Cookie{
		{Name: "access_token", Value: "stale"},
		{Name: "refresh_token", Value: "ref"},
	})

	user, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", user.Email)
	assert.Equal(t, int64(7), user.ID)
}

func TestConcurrentRenewalsCoalesce(t *testing.T) {
	var refreshCalls atomic.Int32
	var refreshed atomic.Bool

	mux := http.NewServeMux()
	mux.HandleFunc("GET /user/me", func(w http.ResponseWriter, r *http.Request) {
		if !refreshed.Load() {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 1, "email": "a@b.c", "is_active": true}`))
	})
	mux.HandleFunc("POST /auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		time.Sleep(100 * time.Millisecond)
		refreshed.Store(true)
		setAuthCookies(w)
	})

	c := newTestClient(t, mux)

	const callers = 5
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.CurrentUser(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "caller %d", i)
	}
	assert.Equal(t, int32(1), refreshCalls.Load(), "concurrent 401s must share one renewal")
}

func TestErrorDetailDecoding(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "Email already registered"}`, http.StatusConflict)
	})

	c := newTestClient(t, mux)

	err := c.Register(context.Background(), "a@b.c", "pw", "pw")
	require.Error(t, err)
	assert.True(t, IsConflict(err))

	var be *Error
	require.True(t, errors.As(err, &be))
	assert.Equal(t, http.StatusConflict, be.Status)
	assert.Equal(t, "Email already registered", be.Detail)
}

func TestHasCredentialTracksCookies(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		setAuthCookies(w)
		_, _ = w.Write([]byte(`{"message": "Login successful"}`))
	})
	mux.HandleFunc("GET /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "", MaxAge: -1, Path: "/"})
		http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: "", MaxAge: -1, Path: "/"})
	})

	c := newTestClient(t, mux)
	assert.False(t, c.HasCredential())

	require.NoError(t, c.Login(context.Background(), "a@b.c", "pw"))
	assert.True(t, c.HasCredential(), "login response cookies must land in the jar")

	require.NoError(t, c.Logout(context.Background()))
	assert.False(t, c.HasCredential(), "logout must clear the jar via Set-Cookie")
}

func TestPromptMultipart(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat/prompt", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "what is rag?", r.FormValue("message"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message": "RAG query successful", "response_rag": "retrieval augmented generation"}`))
	})

	c := newTestClient(t, mux)

	res, err := c.Prompt(context.Background(), "what is rag?", "")
	require.NoError(t, err)
	assert.Equal(t, "retrieval augmented generation", res.Answer)
	assert.Empty(t, res.Prediction)
}

func TestIsAuthPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/auth/login", true},
		{"/auth/register", true},
		{"/auth/refresh-token", true},
		{"/auth/logout", true},
		{"/auth/update-password", false},
		{"/user/me", false},
		{"/conversations", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := isAuthPath(tt.path); got != tt.want {
				t.Errorf("isAuthPath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/conversations", "/conversations"},
		{"/conversations/42/messages", "/conversations/{id}/messages"},
		{"/user/me", "/user/me"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
