// Package transcript は、ページと質問応答の記録を Markdown に整形します。
package transcript

import (
	"fmt"
	"strings"
	"time"

	"github.com/shouni/web-ai-chat-go/pkg/types"
)

// Render はページ情報と質問応答の一覧を Markdown 文書にします。
func Render(page *types.PageResult, exchanges []types.Exchange, generatedAt time.Time) string {
	var sb strings.Builder

	title := page.Title
	if title == "" {
		title = page.URL
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "- URL: %s\n", page.URL)
	if page.Description != "" {
		fmt.Fprintf(&sb, "- Description: %s\n", page.Description)
	}
	fmt.Fprintf(&sb, "- Generated: %s\n", generatedAt.UTC().Format(time.RFC3339))

	for i, ex := range exchanges {
		fmt.Fprintf(&sb, "\n## Q%d. %s\n\n", i+1, ex.Question)
		if ex.Failed {
			sb.WriteString("> ")
		}
		sb.WriteString(strings.TrimSpace(ex.Answer))
		sb.WriteString("\n")
	}

	return sb.String()
}
