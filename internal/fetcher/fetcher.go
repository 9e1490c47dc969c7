package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
)

const (
	// DefaultTimeout は1回の取得全体に許可する時間です。
	DefaultTimeout = 30 * time.Second
	// DefaultMaxContentSize は読み込む本文の上限です。圧縮の展開後のサイズにも適用します。
	DefaultMaxContentSize int64 = 20 << 20
	maxRedirects                = 10
)

// Result は、1回の取得で得られたレスポンスの要素を保持します。
type Result struct {
	URL        string      // リクエストしたURL
	FinalURL   string      // リダイレクト後のURL
	StatusCode int         // HTTPステータスコード
	Header     http.Header // レスポンスヘッダー (埋め込み可否の判定に使う)
	Body       string      // UTF-8 に変換済みの本文
}

// StatusError は、2xx 以外のステータスが返ったことを表します。
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: Failed to fetch", e.StatusCode)
}

// Option は Fetcher の設定を変更します。
type Option func(*Fetcher)

// WithHTTPClient は、httpkit.Client の下で使う http.Client を差し替えます。
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.httpClient = c }
}

// WithUserAgent は、送信する User-Agent を差し替えます。
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

// WithMaxContentSize は、読み込む本文の上限バイト数を設定します。
func WithMaxContentSize(n int64) Option {
	return func(f *Fetcher) { f.maxContentSize = n }
}

// Fetcher は、ブラウザ風のヘッダーでWebページを取得します。
// レスポンスヘッダーで埋め込み可否を判定するため、httpkit の Do でレスポンスをそのまま受け取ります。
// 取得は1回きりで、リトライはしません。
type Fetcher struct {
	client         *httpkit.Client
	httpClient     *http.Client
	userAgent      string
	maxContentSize int64
}

// New は新しい Fetcher を作成します。timeout が0以下の場合は DefaultTimeout を使います。
func New(timeout time.Duration, opts ...Option) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	f := &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects (max %d)", maxRedirects)
				}
				return nil
			},
		},
		userAgent:      DefaultUserAgent,
		maxContentSize: DefaultMaxContentSize,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.client = httpkit.New(timeout, httpkit.WithHTTPClient(f.httpClient))
	return f
}

// Fetch は rawURL を GET し、本文とヘッダーを返します。
// ctx がキャンセルされるとリクエストは即座に中断され、ctx.Err() をラップしたエラーが返ります。
// 通信エラーは *url.Error のまま返します。エラーメッセージにURLを付け足すことはしません。
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	u, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗しました: %w", err)
	}
	req.Header = BrowserHeaders(f.userAgent, Origin(u))

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	slog.Debug("レスポンスを受信しました",
		slog.String("url", u.Redacted()),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	raw, err := readLimited(resp.Body, f.maxContentSize)
	if err != nil {
		return nil, err
	}

	body, err := decodeBody(raw, resp.Header.Get("Content-Encoding"), resp.Header.Get("Content-Type"), f.maxContentSize)
	if err != nil {
		return nil, err
	}

	return &Result{
		URL:        rawURL,
		FinalURL:   resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// ParseURL は、取得対象として有効な http/https の絶対URLかを検証します。
func ParseURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid URL: unsupported scheme %q (http or https only)", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid URL: missing host")
	}
	return u, nil
}

// Origin は "scheme://host[:port]" 形式のオリジンを返します。
func Origin(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}
