package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shouni/web-ai-chat-go/internal/chat"
	"github.com/shouni/web-ai-chat-go/internal/config"
	"github.com/shouni/web-ai-chat-go/internal/fetcher"
	"github.com/shouni/web-ai-chat-go/internal/llm"
	"github.com/shouni/web-ai-chat-go/pkg/iohandler"
	"github.com/shouni/web-ai-chat-go/prompts"
)

// Components は、コマンド間で共有する依存関係をまとめたものです。
type Components struct {
	Config    config.Config
	Fetcher   *fetcher.Fetcher
	Generator llm.Generator // APIキー未設定の場合は nil
	Prompt    *prompts.PromptBuilder
	IO        *iohandler.IOHandler
}

// Option は Build の挙動を変更します。
type Option func(*buildOptions)

type buildOptions struct {
	skipLLM bool
}

// WithoutLLM は Gemini クライアントを作成しません。ページ取得だけを行うコマンドで使います。
func WithoutLLM() Option {
	return func(o *buildOptions) { o.skipLLM = true }
}

// Build は、設定から必要なすべての依存関係を構築し、Components と
// リソースのクリーンアップ関数を返します。
func Build(ctx context.Context, cfg config.Config, opts ...Option) (*Components, func(), error) {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	ioHandler := iohandler.New()
	closer := func() {
		if err := ioHandler.Close(); err != nil {
			slog.Warn("GCSクライアントのクローズに失敗しました", slog.Any("error", err))
		}
	}

	prompt := prompts.NewAskPromptBuilder(cfg.MaxContextChars)
	if err := prompt.Err(); err != nil {
		return nil, closer, fmt.Errorf("Ask Prompt Builderの初期化に失敗しました: %w", err)
	}

	var generator llm.Generator
	if !o.skipLLM {
		var err error
		if generator, err = newGenerator(ctx, cfg); err != nil {
			return nil, closer, err
		}
	}

	return &Components{
		Config:    cfg,
		Fetcher:   fetcher.New(cfg.FetchTimeout),
		Generator: generator,
		Prompt:    prompt,
		IO:        ioHandler,
	}, closer, nil
}

// newGenerator は Gemini クライアントを作成します。APIキーが無い場合は nil を返します。
func newGenerator(ctx context.Context, cfg config.Config) (llm.Generator, error) {
	client, err := llm.NewGeminiClient(ctx, llm.Config{
		APIKey:   cfg.APIKey,
		Model:    cfg.Model,
		Endpoint: cfg.Endpoint,
		Timeout:  cfg.LLMTimeout,
	})
	switch {
	case errors.Is(err, llm.ErrAPIKeyMissing):
		// 質問時に "API Key not configured." を返すため、ここではエラーにしない
		slog.Warn("Gemini APIキーが設定されていません。質問応答は利用できません。",
			slog.String("env", config.EnvAPIKey))
		return nil, nil
	case err != nil:
		return nil, err
	}
	return client, nil
}

// NewSession は共有の依存関係を使う新しいセッションを作成します。
func (c *Components) NewSession(notifier chat.Notifier) (*chat.Session, error) {
	return chat.NewSession(chat.Options{
		Fetcher:   c.Fetcher,
		Generator: c.Generator,
		APIKey:    c.Config.APIKey,
		Prompt:    c.Prompt,
		Notifier:  notifier,
	})
}
