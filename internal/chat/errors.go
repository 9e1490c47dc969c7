package chat

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/shouni/web-ai-chat-go/internal/fetcher"
)

// ユーザーに表示する固定メッセージです。
const (
	MsgFetchSuccess        = "Website content fetched successfully!"
	MsgNoContent           = "Error: Please load a website first or check if the URL is correct."
	MsgAPIKeyMissing       = "Please set your Google AI API Key in the settings."
	MsgAPIKeyNotConfigured = "API Key not configured."
	MsgNoAIResponse        = "No response from AI"
	MsgAIError             = "Sorry, I encountered an error with the AI model."

	msgFetchFailed     = "Failed to fetch website content."
	msgWebsiteNotFound = "Cannot find the website. Please check the URL."
	msgConnRefused     = "Connection refused. The website may be down."
	msgTimeout         = "Request timeout. The website is taking too long to respond."
	msgCertError       = "SSL certificate error. The website may have security issues."
	msgForbidden       = "Access forbidden (403). The website may be blocking automated requests."
	msgPageNotFound    = "Page not found (404). Please check the URL."
	msgServerErrorFmt  = "Server error (%s). The website may be experiencing issues."
	msgFetchErrorFmt   = "Failed to fetch: %s"
)

var serverStatusRe = regexp.MustCompile(`\b5\d\d\b`)

// LoadError は、ページ取得の失敗をユーザー向けメッセージと共に保持します。
type LoadError struct {
	// Message は FetchErrorMessage で分類されたユーザー向けメッセージです。
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// FetchErrorMessage は、取得エラーのメッセージを部分一致で分類し、ユーザー向けの文言に変換します。
// 最初に一致した分類が採用されます。
// 通信エラー (*url.Error) は URL を含むため、内側の原因だけを分類の対象にします。
func FetchErrorMessage(err error) string {
	if err == nil || err.Error() == "" {
		return msgFetchFailed
	}
	msg := err.Error()

	var urlErr *url.Error
	transport := errors.As(err, &urlErr) && urlErr.Err != nil
	if transport {
		msg = urlErr.Err.Error()
	}
	lower := strings.ToLower(msg)

	var statusErr *fetcher.StatusError
	isStatus := errors.As(err, &statusErr)
	// 通信エラーにはHTTPステータスが無いので、数字の部分一致は使わない
	textual := !isStatus && !transport

	switch {
	case containsAny(msg, "no such host", "ENOTFOUND", "getaddrinfo", "server misbehaving"):
		return msgWebsiteNotFound
	case containsAny(msg, "connection refused", "ECONNREFUSED"):
		return msgConnRefused
	case containsAny(msg, "ETIMEDOUT", "deadline exceeded") || strings.Contains(lower, "timeout"):
		return msgTimeout
	case containsAny(msg, "CERT", "certificate", "x509"):
		return msgCertError
	case isStatus && statusErr.StatusCode == 403, textual && strings.Contains(msg, "403"):
		return msgForbidden
	case isStatus && statusErr.StatusCode == 404, textual && strings.Contains(msg, "404"):
		return msgPageNotFound
	case isStatus && statusErr.StatusCode >= 500, textual && serverStatusRe.MatchString(msg):
		return fmt.Sprintf(msgServerErrorFmt, msg)
	}
	return fmt.Sprintf(msgFetchErrorFmt, msg)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
