package chat

import (
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shouni/web-ai-chat-go/internal/fetcher"
)

const connReset = "read tcp 10.0.0.1:50403->93.184.216.34:443: read: connection reset by peer"

func resetError(rawURL string) error {
	return &url.Error{Op: "Get", URL: rawURL, Err: errors.New(connReset)}
}

func TestFetchErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: msgFetchFailed},
		{name: "empty message", err: errors.New(""), want: msgFetchFailed},
		{name: "dns", err: errors.New("dial tcp: lookup nope.invalid: no such host"), want: msgWebsiteNotFound},
		{name: "node style dns", err: errors.New("getaddrinfo ENOTFOUND nope.invalid"), want: msgWebsiteNotFound},
		{name: "refused", err: errors.New("dial tcp 127.0.0.1:1: connect: connection refused"), want: msgConnRefused},
		{name: "client timeout", err: errors.New("context deadline exceeded (Client.Timeout exceeded while awaiting headers)"), want: msgTimeout},
		{name: "io timeout", err: errors.New("read tcp: i/o timeout"), want: msgTimeout},
		{name: "certificate", err: errors.New("tls: failed to verify certificate: x509: certificate signed by unknown authority"), want: msgCertError},
		{name: "403 status", err: fmt.Errorf("wrapped: %w", &fetcher.StatusError{StatusCode: 403}), want: msgForbidden},
		{name: "404 status", err: &fetcher.StatusError{StatusCode: 404}, want: msgPageNotFound},
		{name: "503 status", err: &fetcher.StatusError{StatusCode: 503}, want: "Server error (HTTP 503: Failed to fetch). The website may be experiencing issues."},
		{name: "500 in text", err: errors.New("upstream said 500"), want: "Server error (upstream said 500). The website may be experiencing issues."},
		{name: "other status", err: &fetcher.StatusError{StatusCode: 418}, want: "Failed to fetch: HTTP 418: Failed to fetch"},
		{name: "generic", err: errors.New("something odd"), want: "Failed to fetch: something odd"},
		{name: "reset on 403 path", err: resetError("https://example.com/reports/403"), want: "Failed to fetch: " + connReset},
		{name: "reset on 404 path", err: resetError("https://example.com/docs/404-guide"), want: "Failed to fetch: " + connReset},
		{name: "reset on certificate path", err: resetError("https://example.com/blog/certificate-renewal"), want: "Failed to fetch: " + connReset},
		{name: "reset on 500 path", err: resetError("https://example.com/api/v2/500"), want: "Failed to fetch: " + connReset},
		{name: "wrapped reset", err: fmt.Errorf("load: %w", resetError("https://example.com/reports/403")), want: "Failed to fetch: " + connReset},
		{name: "dns behind url error", err: &url.Error{Op: "Get", URL: "https://example.com/404", Err: errors.New("dial tcp: lookup example.com: no such host")}, want: msgWebsiteNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FetchErrorMessage(tt.err))
		})
	}
}

func TestLoadErrorUnwrap(t *testing.T) {
	inner := &fetcher.StatusError{StatusCode: 404}
	err := error(&LoadError{Message: msgPageNotFound, Err: inner})

	var statusErr *fetcher.StatusError
	assert.True(t, errors.As(err, &statusErr))
	assert.Contains(t, err.Error(), msgPageNotFound)
}
