package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shouni/web-ai-chat-go/internal/builder"
	"github.com/shouni/web-ai-chat-go/internal/config"
	"github.com/shouni/web-ai-chat-go/internal/server"
)

// serveCmd は、ページ表示とチャットを並べたWeb UIを起動するコマンドです。
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "ページ表示とAIチャットを並べたWeb UIを起動します。",
	Long: `
左側にWebページ、右側にそのページについて質問できるチャットを表示するWeb UIを起動します。
ブラウザで --listen のアドレス (既定は ` + config.DefaultListen + `) を開いてください。
Prometheus形式のメトリクスは /metrics で公開されます。
`,
	RunE: runServe,
}

func init() {
	addConfigFlags(serveCmd)
	serveCmd.Flags().StringP("listen", "l", config.DefaultListen, "Web UIの待ち受けアドレス")
	serveCmd.Flags().Bool("secure-cookie", false, "セッションCookieに Secure 属性を付ける (HTTPS経由で公開する場合)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	secure, err := cmd.Flags().GetBool("secure-cookie")
	if err != nil {
		return fmt.Errorf("secure-cookieフラグの取得に失敗しました: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, closer, err := builder.Build(ctx, cfg)
	defer closer()
	if err != nil {
		return fmt.Errorf("依存関係の構築に失敗しました: %w", err)
	}

	srv, err := server.New(c.NewSession, server.WithSecureCookie(secure))
	if err != nil {
		return fmt.Errorf("サーバーの構築に失敗しました: %w", err)
	}
	return srv.Run(ctx, cfg.Listen)
}
