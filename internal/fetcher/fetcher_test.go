package fetcher

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch_SendsBrowserHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("X-Frame-Options", "DENY")
		_, _ = w.Write([]byte("<p>ok</p>"))
	}))
	defer srv.Close()

	res, err := New(5*time.Second).Fetch(context.Background(), srv.URL+"/some/page?q=1")
	require.NoError(t, err)

	assert.Equal(t, "<p>ok</p>", res.Body)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "DENY", res.Header.Get("X-Frame-Options"))

	assert.Equal(t, DefaultUserAgent, got.Get("User-Agent"))
	assert.Equal(t, srv.URL+"/", got.Get("Referer"))
	assert.Equal(t, "en-US,en;q=0.9", got.Get("Accept-Language"))
	assert.Equal(t, "navigate", got.Get("Sec-Fetch-Mode"))
	assert.Equal(t, "1", got.Get("Upgrade-Insecure-Requests"))
	assert.Contains(t, got.Get("Accept"), "text/html")
}

func TestFetch_StatusHandling(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "200 ok", status: http.StatusOK},
		{name: "203 is 2xx", status: http.StatusNonAuthoritativeInfo},
		{name: "403 forbidden", status: http.StatusForbidden, wantErr: true},
		{name: "404 not found", status: http.StatusNotFound, wantErr: true},
		{name: "503 unavailable", status: http.StatusServiceUnavailable, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("body"))
			}))
			defer srv.Close()

			_, err := New(5*time.Second).Fetch(context.Background(), srv.URL)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}

			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tt.status, statusErr.StatusCode)
		})
	}
}

func TestFetch_DecodesGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("<h1>compressed</h1>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	res, err := New(5*time.Second).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<h1>compressed</h1>", res.Body)
}

func TestFetch_TranscodesCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte{'c', 'a', 'f', 0xe9})
	}))
	defer srv.Close()

	res, err := New(5*time.Second).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "café", res.Body)
}

func TestFetch_ContentTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte("a"), 64))
	}))
	defer srv.Close()

	_, err := New(5*time.Second, WithMaxContentSize(16)).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content too large")
}

func TestFetch_DecompressedSizeIsLimited(t *testing.T) {
	const limit = 64 << 10
	plain := bytes.Repeat([]byte{'a'}, 4<<20)

	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	_, err := zw.Write(plain)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	zs := enc.EncodeAll(plain, nil)
	require.NoError(t, enc.Close())

	tests := []struct {
		name     string
		encoding string
		body     []byte
	}{
		{name: "gzip", encoding: "gzip", body: gz.Bytes()},
		{name: "zstd", encoding: "zstd", body: zs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 圧縮後は上限未満だが、展開すると上限を超える
			require.Less(t, len(tt.body), limit)

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Encoding", tt.encoding)
				w.Header().Set("Content-Type", "text/html")
				_, _ = w.Write(tt.body)
			}))
			defer srv.Close()

			res, err := New(5*time.Second, WithMaxContentSize(limit)).Fetch(context.Background(), srv.URL)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrContentTooLarge)
		})
	}
}

func TestFetch_TransportErrorIsURLError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		require.True(t, ok)
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		_ = conn.Close()
	}))
	defer srv.Close()

	_, err := New(5*time.Second).Fetch(context.Background(), srv.URL+"/reports/403")
	require.Error(t, err)

	var urlErr *url.Error
	require.ErrorAs(t, err, &urlErr)
	assert.NotContains(t, urlErr.Err.Error(), "/reports/403")
}

type countingTransport struct {
	calls int
	next  http.RoundTripper
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.calls++
	return c.next.RoundTrip(req)
}

func TestFetch_UsesGivenHTTPClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	transport := &countingTransport{next: http.DefaultTransport}
	f := New(5*time.Second, WithHTTPClient(&http.Client{Transport: transport}))

	_, err := f.Fetch(context.Background(), srv.URL)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	// 5xx でもリトライせず、1回だけ送信する
	assert.Equal(t, 1, transport.calls)
}

func TestFetch_CanceledContext(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := New(10*time.Second).Fetch(ctx, srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "https", url: "https://example.com/a"},
		{name: "http with port", url: "http://localhost:8080"},
		{name: "ftp rejected", url: "ftp://example.com", wantErr: true},
		{name: "relative rejected", url: "/just/a/path", wantErr: true},
		{name: "garbage rejected", url: "http://%zz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}
