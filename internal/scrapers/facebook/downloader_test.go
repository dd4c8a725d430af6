package facebook

import (
	"context"
	"errors"
	"fbwatch/internal/components/telemetry"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestDownloader(t *testing.T, handler http.HandlerFunc) (HttpDownloader, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHttpDownloader(HttpDownloaderOptions{}, telemetry.NewTestAPI()), server
}

func TestHttpDownloaderSendsHeaders(t *testing.T) {
	var header http.Header
	downloader, server := newTestDownloader(t, func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Clone()
		w.Write([]byte("hello"))
	})

	res, err := downloader.Fetch(context.Background(), FetchRequest{
		Cookie: BuildCookie("123", "abc"),
		Url:    server.URL + "/page",
	})
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, res.Status)
	require.Equal(t, "hello", res.Body)
	require.Equal(t, "c_user=123; xs=abc; noscript=1;", header.Get("Cookie"))
	require.Equal(t, defaultHeaders["user-agent"], header.Get("User-Agent"))
	require.Equal(t, defaultHeaders["accept-language"], header.Get("Accept-Language"))
}

func TestHttpDownloaderRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	downloader, server := newTestDownloader(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("finally"))
	})

	res, err := downloader.Fetch(context.Background(), FetchRequest{Url: server.URL, Retries: 3})
	require.NoError(t, err)
	require.Equal(t, "finally", res.Body)
	require.Equal(t, int32(3), hits.Load())
}

func TestHttpDownloaderGivesUp(t *testing.T) {
	var hits atomic.Int32
	downloader, server := newTestDownloader(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := downloader.Fetch(context.Background(), FetchRequest{Url: server.URL, Retries: 2})

	var transportErr TransportError
	require.True(t, errors.As(err, &transportErr))
	require.Equal(t, http.StatusBadGateway, transportErr.Status)
	require.Equal(t, int32(2), hits.Load())
}

func TestHttpDownloaderDoesNotRetryClientErrors(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
		status  int
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte("missing"))
			},
			status: http.StatusNotFound,
		},
		{
			name:    "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {},
			status:  http.StatusOK,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			var hits atomic.Int32
			downloader, server := newTestDownloader(t, func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				test.handler(w, r)
			})

			_, err := downloader.Fetch(context.Background(), FetchRequest{Url: server.URL, Retries: 3})

			var transportErr TransportError
			require.True(t, errors.As(err, &transportErr))
			require.Equal(t, test.status, transportErr.Status)
			require.Equal(t, int32(1), hits.Load())
		})
	}
}

func TestHttpDownloaderFollowsRedirects(t *testing.T) {
	downloader, server := newTestDownloader(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			http.Redirect(w, r, "/end", http.StatusFound)
			return
		}
		w.Write([]byte("arrived at " + r.URL.Path))
	})

	res, err := downloader.Fetch(context.Background(), FetchRequest{Url: server.URL + "/start"})
	require.NoError(t, err)
	require.Equal(t, "arrived at /end", res.Body)
}

func TestHttpDownloaderTimesOut(t *testing.T) {
	var hits atomic.Int32
	downloader, server := newTestDownloader(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})

	_, err := downloader.Fetch(context.Background(), FetchRequest{
		Url:     server.URL,
		Timeout: time.Millisecond * 20,
		Retries: 2,
	})

	var transportErr TransportError
	require.True(t, errors.As(err, &transportErr))
	require.Zero(t, transportErr.Status)
	require.Equal(t, int32(2), hits.Load())
}

func TestHttpDownloaderRespectsCancellation(t *testing.T) {
	var hits atomic.Int32
	downloader, server := newTestDownloader(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("never"))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := downloader.Fetch(ctx, FetchRequest{Url: server.URL, Retries: 3})
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, hits.Load())
}
