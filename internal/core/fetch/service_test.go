package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireInvalidURL(t *testing.T) {
	svc := NewService(time.Second)

	for _, raw := range []string{"", "not a url", "ftp://example.com/lp", "/relative/path"} {
		_, err := svc.Acquire(context.Background(), raw)
		assert.ErrorIs(t, err, ErrInvalidURL, "url %q", raw)
	}
}

func TestAcquireFirstStrategyWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	svc := NewService(time.Second)
	doc, err := svc.Acquire(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, string(StrategyDesktopBrowser), doc.Strategy)
	assert.Equal(t, http.StatusOK, doc.StatusCode)
	assert.Contains(t, doc.Body, "ok")
	assert.Len(t, doc.Attempts, 1)
}

func TestAcquireFallsThroughToThirdStrategy(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= 2 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte("<html><body>third time lucky</body></html>"))
	}))
	defer srv.Close()

	svc := NewService(time.Second)
	doc, err := svc.Acquire(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, string(StrategyMinimalClient), doc.Strategy)
	assert.Contains(t, doc.Body, "third time lucky")
	assert.Len(t, doc.Attempts, 3)
	assert.Equal(t, http.StatusForbidden, doc.Attempts[0].StatusCode)
	assert.Equal(t, http.StatusForbidden, doc.Attempts[1].StatusCode)
}

func TestAcquireEmptyBodyTriesNext(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			// 200 with nothing in it still counts as a failed attempt
			w.WriteHeader(http.StatusOK)
			return
		}
		_, _ = w.Write([]byte("<html><body>content</body></html>"))
	}))
	defer srv.Close()

	svc := NewService(time.Second)
	doc, err := svc.Acquire(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, string(StrategyMobileDevice), doc.Strategy)
}

func TestAcquireExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	svc := NewService(time.Second)
	_, err := svc.Acquire(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchExhausted)
	assert.NotErrorIs(t, err, ErrInvalidURL)
}

func TestAcquireExhaustedAfterServerGone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	svc := NewService(time.Second)
	_, err := svc.Acquire(context.Background(), url)
	assert.ErrorIs(t, err, ErrFetchExhausted)
}

func TestAcquireSendsProfileHeaders(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html>x</html>"))
	}))
	defer srv.Close()

	svc := NewService(time.Second)
	_, err := svc.Acquire(context.Background(), srv.URL)
	require.NoError(t, err)

	profile, ok := ProfileFor(StrategyDesktopBrowser)
	require.True(t, ok)
	assert.Equal(t, profile.UserAgent, gotUA)
}

func TestValidateURL(t *testing.T) {
	u, err := ValidateURL("https://example.jp/lp?x=1")
	require.NoError(t, err)
	assert.Equal(t, "example.jp", u.Host)

	_, err = ValidateURL("https://")
	assert.True(t, errors.Is(err, ErrInvalidURL))
}
