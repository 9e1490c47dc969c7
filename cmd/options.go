package cmd

import (
	"fmt"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"

	"github.com/shouni/web-ai-chat-go/internal/config"
)

// addConfigFlags は、全サブコマンド共通の設定フラグを定義します。
// 既定値は config.Default() と同じで、明示的に指定されたフラグのみが設定ファイルと環境変数を上書きします。
// 設定ファイルのパスはルートの永続フラグ --config/-C (clibase.Flags.ConfigFile) で指定します。
func addConfigFlags(cmd *cobra.Command) {
	def := config.Default()
	cmd.Flags().StringP("api-key", "k", "", "Gemini APIキー (省略時は環境変数 "+config.EnvAPIKey+")")
	cmd.Flags().String("model", def.Model, "質問応答に使用するAIモデル名")
	cmd.Flags().String("endpoint", "", "Gemini APIのベースURL (テストやプロキシ用)")
	cmd.Flags().Duration("fetch-timeout", def.FetchTimeout, "ページ取得のHTTPタイムアウト時間")
	cmd.Flags().Duration("llm-timeout", def.LLMTimeout, "LLM呼び出しのタイムアウト時間")
	cmd.Flags().Int("max-context-chars", def.MaxContextChars, "プロンプトに含めるページ本文の最大文字数")
}

// loadConfig は設定ファイルと環境変数から Config を読み込み、指定されたフラグで上書きします。
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()

	cfg, err := config.Load(clibase.Flags.ConfigFile)
	if err != nil {
		return config.Config{}, err
	}

	if flags.Changed("api-key") {
		if cfg.APIKey, err = flags.GetString("api-key"); err != nil {
			return config.Config{}, fmt.Errorf("api-keyフラグの取得に失敗しました: %w", err)
		}
	}
	if flags.Changed("model") {
		if cfg.Model, err = flags.GetString("model"); err != nil {
			return config.Config{}, fmt.Errorf("modelフラグの取得に失敗しました: %w", err)
		}
	}
	if flags.Changed("endpoint") {
		if cfg.Endpoint, err = flags.GetString("endpoint"); err != nil {
			return config.Config{}, fmt.Errorf("endpointフラグの取得に失敗しました: %w", err)
		}
	}
	if flags.Changed("fetch-timeout") {
		if cfg.FetchTimeout, err = flags.GetDuration("fetch-timeout"); err != nil {
			return config.Config{}, fmt.Errorf("fetch-timeoutフラグの取得に失敗しました: %w", err)
		}
	}
	if flags.Changed("llm-timeout") {
		if cfg.LLMTimeout, err = flags.GetDuration("llm-timeout"); err != nil {
			return config.Config{}, fmt.Errorf("llm-timeoutフラグの取得に失敗しました: %w", err)
		}
	}
	if flags.Changed("max-context-chars") {
		if cfg.MaxContextChars, err = flags.GetInt("max-context-chars"); err != nil {
			return config.Config{}, fmt.Errorf("max-context-charsフラグの取得に失敗しました: %w", err)
		}
	}
	if flags.Changed("listen") {
		if cfg.Listen, err = flags.GetString("listen"); err != nil {
			return config.Config{}, fmt.Errorf("listenフラグの取得に失敗しました: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
