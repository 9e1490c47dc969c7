package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/shouni/web-ai-chat-go/internal/builder"
	"github.com/shouni/web-ai-chat-go/internal/chat"
	"github.com/shouni/web-ai-chat-go/pkg/cleaner"
	"github.com/shouni/web-ai-chat-go/pkg/iohandler"
)

const (
	formatText     = "text"
	formatMarkdown = "markdown"
)

// fetchCmd は、1つのページを取得して整形したテキストを出力するコマンドです。
var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Webページを取得し、LLMに渡すテキスト (またはMarkdown) を出力します。",
	Long: `
Webページを取得し、質問応答でLLMに渡されるものと同じクリーンなテキストを出力します。
--format markdown を指定すると、見出しやリンクを保ったMarkdownに変換して出力します。

-oまたは--outputオプションでファイルパスまたは gs://bucket/object を指定すると、そこに書き込まれます。
指定しない場合は標準出力に出力されます。
`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	addConfigFlags(fetchCmd)
	fetchCmd.Flags().StringP("output", "o", "", "出力先のファイルパスまたは gs:// URI (省略時は標準出力)")
	fetchCmd.Flags().StringP("format", "f", formatText, "出力形式 (text または markdown)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("outputフラグの取得に失敗しました: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("formatフラグの取得に失敗しました: %w", err)
	}
	if format != formatText && format != formatMarkdown {
		return fmt.Errorf("--format には %s または %s を指定する必要があります: %s", formatText, formatMarkdown, format)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	c, closer, err := builder.Build(ctx, cfg, builder.WithoutLLM())
	defer closer()
	if err != nil {
		return fmt.Errorf("依存関係の構築に失敗しました: %w", err)
	}

	rawURL := args[0]
	res, err := c.Fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("%s: %w", chat.FetchErrorMessage(err), err)
	}

	content := cleaner.CleanHTML(res.Body)
	contentType := iohandler.ContentTypeText
	if format == formatMarkdown {
		content, err = cleaner.ToMarkdown(res.Body, rawURL)
		if err != nil {
			return fmt.Errorf("Markdownへの変換に失敗しました: %w", err)
		}
		contentType = iohandler.ContentTypeMarkdown
	}

	slog.Info("ページを取得しました",
		slog.String("url", rawURL),
		slog.String("final_url", res.FinalURL),
		slog.Int("chars", len([]rune(content))))

	if err := c.IO.WriteOutput(ctx, output, content, contentType); err != nil {
		return fmt.Errorf("出力の書き込みに失敗しました: %w", err)
	}
	return nil
}
