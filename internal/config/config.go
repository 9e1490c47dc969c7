package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shouni/web-ai-chat-go/internal/fetcher"
	"github.com/shouni/web-ai-chat-go/internal/llm"
	"github.com/shouni/web-ai-chat-go/prompts"
)

// EnvAPIKey は APIキーを渡す環境変数名です。設定ファイルより優先されます。
const EnvAPIKey = "GEMINI_API_KEY"

// DefaultListen は serve コマンドの既定の待ち受けアドレスです。
const DefaultListen = "127.0.0.1:8787"

// Config はアプリケーション全体の設定値を集約します。
// 優先順位は フラグ > 環境変数 > 設定ファイル > 既定値 です。
type Config struct {
	APIKey          string        `yaml:"apiKey"`
	Model           string        `yaml:"model"`
	Endpoint        string        `yaml:"endpoint"`
	FetchTimeout    time.Duration `yaml:"fetchTimeout"`
	LLMTimeout      time.Duration `yaml:"llmTimeout"`
	MaxContextChars int           `yaml:"maxContextChars"`
	Listen          string        `yaml:"listen"`
}

// Default は既定値の Config を返します。
func Default() Config {
	return Config{
		Model:           llm.DefaultModel,
		FetchTimeout:    fetcher.DefaultTimeout,
		LLMTimeout:      llm.DefaultTimeout,
		MaxContextChars: prompts.DefaultMaxSiteContentChars,
		Listen:          DefaultListen,
	}
}

// DefaultPath は既定の設定ファイルのパス (例: ~/.config/web-ai-chat/config.yaml) を返します。
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "web-ai-chat", "config.yaml")
}

// Load は設定ファイルと環境変数から Config を組み立てます。
// path が空の場合は DefaultPath を使い、そのファイルが存在しなくてもエラーにしません。
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	if key := strings.TrimSpace(os.Getenv(EnvAPIKey)); key != "" {
		cfg.APIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("設定ファイルの読み込みに失敗しました (%s): %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("設定ファイルの解析に失敗しました (%s): %w", path, err)
	}
	return nil
}

// Validate は設定値の範囲を検証します。
func (c Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model には空でないAIモデル名を指定する必要があります")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetchTimeout には正の値を指定する必要があります: %s", c.FetchTimeout)
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("llmTimeout には正の値を指定する必要があります: %s", c.LLMTimeout)
	}
	if c.MaxContextChars < 1 {
		return fmt.Errorf("maxContextChars には1以上の値を指定する必要があります: %d", c.MaxContextChars)
	}
	return nil
}
