package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shouni/web-ai-chat-go/internal/builder"
	"github.com/shouni/web-ai-chat-go/internal/chat"
	"github.com/shouni/web-ai-chat-go/internal/transcript"
	"github.com/shouni/web-ai-chat-go/pkg/iohandler"
	"github.com/shouni/web-ai-chat-go/pkg/types"
)

// askCmd は、ページを取得して質問に順番に回答し、Markdownのトランスクリプトを出力するコマンドです。
var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Webページの内容だけを根拠に、AIが質問に回答します。",
	Long: `
--url で指定したページを取得し、その内容だけを根拠に質問へ回答します。
質問は -q/--question で複数指定するか、--question-file で1行1問のファイル
(ローカルパスまたは gs://bucket/object、# で始まる行は無視) を指定してください。

結果はMarkdownのトランスクリプトとして -o/--output に書き込まれます。指定しない場合は標準出力に出力されます。
`,
	RunE: runAsk,
}

func init() {
	addConfigFlags(askCmd)
	askCmd.Flags().StringP("url", "u", "", "質問の対象とするページのURL")
	askCmd.Flags().StringArrayP("question", "q", nil, "質問 (複数指定可)")
	askCmd.Flags().String("question-file", "", "1行1問の質問ファイルのパスまたは gs:// URI")
	askCmd.Flags().StringP("output", "o", "", "トランスクリプトの出力先 (省略時は標準出力)")

	_ = askCmd.MarkFlagRequired("url")
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rawURL, err := cmd.Flags().GetString("url")
	if err != nil {
		return fmt.Errorf("urlフラグの取得に失敗しました: %w", err)
	}
	questions, err := cmd.Flags().GetStringArray("question")
	if err != nil {
		return fmt.Errorf("questionフラグの取得に失敗しました: %w", err)
	}
	questionFile, err := cmd.Flags().GetString("question-file")
	if err != nil {
		return fmt.Errorf("question-fileフラグの取得に失敗しました: %w", err)
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("outputフラグの取得に失敗しました: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	c, closer, err := builder.Build(ctx, cfg)
	defer closer()
	if err != nil {
		return fmt.Errorf("依存関係の構築に失敗しました: %w", err)
	}

	if questionFile != "" {
		lines, err := c.IO.ReadLines(ctx, questionFile)
		if err != nil {
			return fmt.Errorf("質問ファイルの読み込みに失敗しました: %w", err)
		}
		questions = append(questions, lines...)
	}
	questions = nonEmpty(questions)
	if len(questions) == 0 {
		return fmt.Errorf("質問を指定してください。-q/--question または --question-file を使用してください。")
	}

	session, err := c.NewSession(chat.LogNotifier{})
	if err != nil {
		return err
	}
	defer session.Close()

	page, err := session.Load(ctx, rawURL)
	if err != nil {
		return err
	}
	if page.Canceled {
		return ctx.Err()
	}

	exchanges := make([]types.Exchange, 0, len(questions))
	for i, q := range questions {
		slog.Info("質問しています", slog.Int("no", i+1), slog.Int("total", len(questions)))
		answer := session.Ask(ctx, q)
		exchanges = append(exchanges, types.Exchange{Question: q, Answer: answer.Text, Failed: answer.Error})
		if ctx.Err() != nil {
			break
		}
	}

	doc := transcript.Render(page, exchanges, time.Now())
	if err := c.IO.WriteOutput(ctx, output, doc, iohandler.ContentTypeMarkdown); err != nil {
		return fmt.Errorf("トランスクリプトの書き込みに失敗しました: %w", err)
	}
	return ctx.Err()
}

func nonEmpty(items []string) []string {
	out := items[:0]
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
