package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/genai"
)

const (
	// DefaultModel は質問応答に使う既定のモデルです。速度とコストを優先します。
	DefaultModel = "gemini-2.5-flash"
	// DefaultTimeout は1回の生成リクエストに許可する時間です。
	DefaultTimeout = 2 * time.Minute
)

// ErrAPIKeyMissing は、APIキーが設定されていない状態でクライアントを作ろうとしたことを表します。
var ErrAPIKeyMissing = errors.New("Gemini APIキーが設定されていません")

// Generator は、プロンプトからテキストを生成する能力を抽象化するインターフェースです。
// これにより、セッションのロジックから API 通信の詳細を分離します。
type Generator interface {
	// Generate は最初の候補の最初のパートのテキストを返します。候補がない場合は空文字列です。
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config は GeminiClient の設定です。
type Config struct {
	APIKey string
	Model  string
	// Endpoint は generativelanguage API のベースURLです。空の場合は公式エンドポイントを使います。
	Endpoint   string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// GeminiClient は Generator の具体的な実装で、Gemini API の generateContent を呼び出します。
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiClient は新しい GeminiClient インスタンスを作成します。
func NewGeminiClient(ctx context.Context, cfg Config) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyMissing
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.Endpoint != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.Endpoint}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("LLMクライアントの初期化に失敗しました。APIキーを確認してください: %w", err)
	}

	return &GeminiClient{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

// Model は使用中のモデル名を返します。
func (c *GeminiClient) Model() string {
	return c.model
}

// Generate は generateContent を1回呼び出し、最初の候補のテキストを返します。
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	slog.Debug("Gemini API を呼び出します",
		slog.String("model", c.model),
		slog.Int("prompt_chars", len([]rune(prompt))))

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generateContent の呼び出しに失敗しました (model: %s): %w", c.model, err)
	}

	return firstCandidateText(resp), nil
}

// firstCandidateText は candidates[0].content.parts[0].text を取り出します。
func firstCandidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 || content.Parts[0] == nil {
		return ""
	}
	return content.Parts[0].Text
}

// 型アサーションチェック
var _ Generator = (*GeminiClient)(nil)
