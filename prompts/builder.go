package prompts

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/shouni/web-ai-chat-go/pkg/cleaner"
)

//go:embed ask_prompt.md
var AskPromptTemplate string

// DefaultMaxSiteContentChars は、プロンプトに埋め込むページ本文の最大文字数です。
const DefaultMaxSiteContentChars = 15000

// ----------------------------------------------------------------
// テンプレート構造体
// ----------------------------------------------------------------

type AskTemplateData struct {
	SiteContent string
	Question    string
}

// ----------------------------------------------------------------
// ビルダー実装
// ----------------------------------------------------------------

// PromptBuilder はプロンプトの構成とテンプレート実行を管理します。
type PromptBuilder struct {
	tmpl     *template.Template
	err      error
	maxChars int
}

// NewAskPromptBuilder は質問応答用の PromptBuilder を初期化します。
// maxChars が0以下の場合は DefaultMaxSiteContentChars を使います。
// パースに失敗した場合は、内部にエラーを保持したPromptBuilderを返します。
func NewAskPromptBuilder(maxChars int) *PromptBuilder {
	if maxChars <= 0 {
		maxChars = DefaultMaxSiteContentChars
	}
	tmpl, err := template.New("ask").Parse(strings.TrimRight(AskPromptTemplate, "\n"))
	return &PromptBuilder{tmpl: tmpl, err: err, maxChars: maxChars}
}

// Err は PromptBuilder の初期化（テンプレートパース）時に発生したエラーを返します。
func (b *PromptBuilder) Err() error {
	return b.err
}

// BuildAsk はページ本文の先頭 maxChars 文字と質問を埋め込み、Geminiへ送るプロンプトを完成させます。
func (b *PromptBuilder) BuildAsk(data AskTemplateData) (string, error) {
	if b.tmpl == nil || b.err != nil {
		return "", fmt.Errorf("Ask prompt template is not properly initialized: %w", b.err)
	}
	if data.SiteContent == "" {
		return "", fmt.Errorf("Askプロンプト実行失敗: SiteContentが空です (template: %s)", b.tmpl.Name())
	}

	data.SiteContent = cleaner.Truncate(data.SiteContent, b.maxChars)

	var sb strings.Builder
	if err := b.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("Askプロンプトの実行に失敗しました: %w", err)
	}
	return sb.String(), nil
}
