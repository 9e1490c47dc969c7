package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shouni/go-cli-base"
)

const appName = "web-ai-chat-go"

// Execute は、CLIアプリケーションのルートエントリポイントです。
// 全てのサブコマンドをルートコマンドにアタッチし、実行を開始します。
func Execute() {
	clibase.Execute(appName, nil, createPreRunE(nil), serveCmd, askCmd, fetchCmd)
}

// createPreRunE は、clibase共通のPersistentPreRunEロジックとアプリケーション固有のロジックを結合した関数を作成します。
func createPreRunE(preRunE func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if clibase.Flags.Verbose {
			// Verboseモードではファイル名と行番号を含む詳細なログを出力
			level = slog.LevelDebug
		}
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level:     level,
			AddSource: clibase.Flags.Verbose,
		})
		slog.SetDefault(slog.New(handler))
		slog.Debug("Verbose mode enabled.")

		// アプリケーション固有の PersistentPreRunE 処理を実行
		if preRunE != nil {
			return preRunE(cmd, args)
		}
		return nil
	}
}
