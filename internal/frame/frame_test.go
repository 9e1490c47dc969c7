package frame

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name       string
		header     http.Header
		embeddable bool
	}{
		{name: "no headers", header: http.Header{}, embeddable: true},
		{name: "x-frame-options deny", header: http.Header{"X-Frame-Options": {"DENY"}}, embeddable: false},
		{name: "x-frame-options sameorigin lowercase", header: http.Header{"X-Frame-Options": {"sameorigin"}}, embeddable: false},
		{name: "x-frame-options allow-from", header: http.Header{"X-Frame-Options": {"ALLOW-FROM https://a.example"}}, embeddable: true},
		{name: "csp frame-ancestors none", header: http.Header{"Content-Security-Policy": {"default-src 'self'; frame-ancestors 'none'"}}, embeddable: false},
		{name: "csp frame-ancestors self", header: http.Header{"Content-Security-Policy": {"frame-ancestors 'self'"}}, embeddable: false},
		{name: "csp frame-ancestors wildcard", header: http.Header{"Content-Security-Policy": {"frame-ancestors *"}}, embeddable: true},
		{name: "csp without frame-ancestors", header: http.Header{"Content-Security-Policy": {"default-src 'self'"}}, embeddable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Check(tt.header)
			assert.Equal(t, tt.embeddable, v.Embeddable)
			if !tt.embeddable {
				assert.NotEmpty(t, v.Reason)
			}
		})
	}
}

func TestInject(t *testing.T) {
	const page = "https://example.com/a/b"

	t.Run("after head", func(t *testing.T) {
		got := Inject(`<html><HEAD lang="en"><title>x</title></HEAD><body></body></html>`, page)
		assert.True(t, strings.HasPrefix(got, `<html><HEAD lang="en">`+"\n"+`<base href="https://example.com/a/b">`))
		assert.Contains(t, got, "<title>x</title>")
		assert.Equal(t, 1, strings.Count(got, "<base "))
	})

	t.Run("new head after html", func(t *testing.T) {
		got := Inject(`<html lang="en"><body>hi</body></html>`, page)
		assert.True(t, strings.HasPrefix(got, `<html lang="en">`+"\n<head><base href="))
		assert.Contains(t, got, "</script></head><body>hi</body>")
	})

	t.Run("fragment wrapped", func(t *testing.T) {
		got := Inject(`<p>hi</p>`, page)
		assert.True(t, strings.HasPrefix(got, "<!DOCTYPE html><html><head><base href="))
		assert.True(t, strings.HasSuffix(got, "<body><p>hi</p></body></html>"))
	})

	t.Run("url escaped", func(t *testing.T) {
		got := Inject(`<p>hi</p>`, `https://example.com/?a=1&b="2"`)
		assert.Contains(t, got, `<base href="https://example.com/?a=1&amp;b=&#34;2&#34;">`)
	})
}

func TestSecurityNotice(t *testing.T) {
	v := Check(http.Header{"X-Frame-Options": {"DENY"}})
	got := SecurityNotice("https://example.com/<x>", v)

	assert.Contains(t, got, "cannot be displayed")
	assert.Contains(t, got, "X-Frame-Options: DENY")
	assert.Contains(t, got, "https://example.com/&lt;x&gt;")
	assert.NotContains(t, got, "<x>")
}
