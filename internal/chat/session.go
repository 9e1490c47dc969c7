package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shouni/web-ai-chat-go/internal/fetcher"
	"github.com/shouni/web-ai-chat-go/internal/frame"
	"github.com/shouni/web-ai-chat-go/internal/llm"
	"github.com/shouni/web-ai-chat-go/internal/metrics"
	"github.com/shouni/web-ai-chat-go/pkg/cleaner"
	"github.com/shouni/web-ai-chat-go/pkg/types"
	"github.com/shouni/web-ai-chat-go/prompts"
)

// PageFetcher は、URLからレスポンスを取得する能力を抽象化するインターフェースです。
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetcher.Result, error)
}

// Answer は質問に対する回答です。Error が true の場合、Text はユーザー向けのエラーメッセージです。
type Answer struct {
	Text  string `json:"text"`
	Error bool   `json:"error"`
}

// Options は Session の依存関係と設定です。
type Options struct {
	Fetcher PageFetcher
	// Generator は APIキーが設定されている場合のみ必要です。
	Generator llm.Generator
	APIKey    string
	Prompt    *prompts.PromptBuilder
	Notifier  Notifier
}

// Session は、1人のユーザーの「ページ取得」と「質問」を扱います。
//
// 保持する状態は、直近に取得したページのクリーンなテキストと、実行中の取得のキャンセル関数だけです。
// 取得は同時に1つまでで、新しい取得は前の取得をキャンセルします。
type Session struct {
	fetcher   PageFetcher
	generator llm.Generator
	apiKey    string
	prompt    *prompts.PromptBuilder
	notifier  Notifier

	mu          sync.Mutex
	siteContent string
	pageURL     string
	cancel      context.CancelFunc
	generation  uint64
}

// NewSession は新しい Session を作成します。
func NewSession(opts Options) (*Session, error) {
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("Fetcher は nil にできません")
	}
	if opts.Prompt == nil {
		opts.Prompt = prompts.NewAskPromptBuilder(0)
	}
	if err := opts.Prompt.Err(); err != nil {
		return nil, fmt.Errorf("Ask Prompt Builderの初期化に失敗しました: %w", err)
	}
	if opts.Notifier == nil {
		opts.Notifier = LogNotifier{}
	}

	return &Session{
		fetcher:   opts.Fetcher,
		generator: opts.Generator,
		apiKey:    opts.APIKey,
		prompt:    opts.Prompt,
		notifier:  opts.Notifier,
	}, nil
}

// SiteContent は直近に取得したページのクリーンなテキストを返します。
func (s *Session) SiteContent() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.siteContent
}

// PageURL は直近に取得に成功したページのURLを返します。
func (s *Session) PageURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageURL
}

// Cancel は実行中の取得があれば中断します。中断された Load は Canceled の結果を返します。
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
		s.generation++
	}
}

// Close は実行中の取得を中断します。
func (s *Session) Close() {
	s.Cancel()
}

// Load は rawURL を取得し、LLM用のテキストと表示用HTMLを作成します。
//
// 取得中に Cancel または次の Load が呼ばれた場合は、エラーではなく Canceled=true の結果を返し、
// 通知も行いません。それ以外の失敗では保持しているテキストを消去し、
// 分類したメッセージを通知したうえで *LoadError を返します。
func (s *Session) Load(ctx context.Context, rawURL string) (*types.PageResult, error) {
	ctx, gen := s.begin(ctx)
	defer s.finish(gen)

	start := time.Now()
	res, err := s.fetcher.Fetch(ctx, rawURL)
	if errors.Is(ctx.Err(), context.Canceled) {
		return s.canceled(rawURL), nil
	}
	if err != nil {
		return nil, s.fail(gen, rawURL, err)
	}
	metrics.FetchDuration.Observe(time.Since(start).Seconds())

	cleaned := cleaner.CleanHTML(res.Body)
	meta := cleaner.ExtractMeta(res.Body)
	verdict := frame.Check(res.Header)

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return s.canceled(rawURL), nil
	}
	s.siteContent = cleaned
	s.pageURL = rawURL
	s.mu.Unlock()

	metrics.FetchTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	slog.Info("ページを取得しました",
		slog.String("url", rawURL),
		slog.Int("status", res.StatusCode),
		slog.Int("content_chars", len([]rune(cleaned))),
		slog.Bool("embeddable", verdict.Embeddable))

	page := &types.PageResult{
		URL:         rawURL,
		Title:       meta.Title,
		Description: meta.Description,
		SiteName:    meta.SiteName,
		Content:     cleaned,
		Embeddable:  verdict.Embeddable,
	}
	if verdict.Embeddable {
		page.HTML = frame.Inject(res.Body, rawURL)
		s.notify(types.SeverityInfo, MsgFetchSuccess)
	} else {
		page.HTML = frame.SecurityNotice(rawURL, verdict)
		s.notify(types.SeverityWarning, frame.WarningMessage)
	}
	return page, nil
}

// Ask は、直近に取得したページの内容だけを根拠に質問へ回答します。
// 失敗はすべて Error=true の Answer にまとめられ、error は返しません。
func (s *Session) Ask(ctx context.Context, question string) Answer {
	content := s.SiteContent()
	if content == "" {
		metrics.AskTotal.WithLabelValues(metrics.ResultRejected).Inc()
		return Answer{Text: MsgNoContent, Error: true}
	}

	if s.apiKey == "" || s.generator == nil {
		metrics.AskTotal.WithLabelValues(metrics.ResultRejected).Inc()
		s.notify(types.SeverityError, MsgAPIKeyMissing)
		return Answer{Text: MsgAPIKeyNotConfigured, Error: true}
	}

	prompt, err := s.prompt.BuildAsk(prompts.AskTemplateData{SiteContent: content, Question: question})
	if err != nil {
		return s.askFailed(err)
	}

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return s.askFailed(err)
	}
	if text == "" {
		text = MsgNoAIResponse
	}

	metrics.AskTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	return Answer{Text: text}
}

// begin は前の取得をキャンセルし、新しい取得の世代を開始します。
func (s *Session) begin(parent context.Context) (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.generation++
	return ctx, s.generation
}

// finish は、gen がまだ最新の取得であればキャンセル関数を解放します。
func (s *Session) finish(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation == gen && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) canceled(rawURL string) *types.PageResult {
	metrics.FetchTotal.WithLabelValues(metrics.ResultCanceled).Inc()
	slog.Info("ページの取得はキャンセルされました", slog.String("url", rawURL))
	return &types.PageResult{URL: rawURL, Canceled: true}
}

func (s *Session) fail(gen uint64, rawURL string, err error) error {
	s.mu.Lock()
	if gen == s.generation {
		s.siteContent = ""
		s.pageURL = ""
	}
	s.mu.Unlock()

	metrics.FetchTotal.WithLabelValues(metrics.ResultError).Inc()
	message := FetchErrorMessage(err)
	slog.Warn("ページの取得に失敗しました", slog.String("url", rawURL), slog.Any("error", err))
	s.notify(types.SeverityError, message)
	return &LoadError{Message: message, Err: err}
}

func (s *Session) askFailed(err error) Answer {
	metrics.AskTotal.WithLabelValues(metrics.ResultError).Inc()
	slog.Error("Gemini API の呼び出しに失敗しました", slog.Any("error", err))
	return Answer{Text: MsgAIError, Error: true}
}

func (s *Session) notify(severity types.Severity, message string) {
	s.notifier.Notify(types.Notification{Severity: severity, Message: message})
}
