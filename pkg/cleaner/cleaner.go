package cleaner

import (
	"regexp"
	"strings"
)

// 正規表現は実行時の再コンパイルを避けるため、パッケージ初期化時に一度だけコンパイルします。
var (
	styleBlockRe  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	scriptBlockRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	tagRe         = regexp.MustCompile(`<[^>]*>`)

	// \s は垂直タブを含まないので明示する。NBSP や BOM などの Unicode 空白も1つの空白として扱う
	whitespaceRe = regexp.MustCompile(`[\s\x0b\p{Zs}\x{feff}\x{2028}\x{2029}]+`)
)

// CleanHTML は、HTMLからLLMのコンテキストとして使うプレーンテキストを生成します。
//
// 処理順序は固定です:
//  1. <style> ブロックを削除
//  2. <script> ブロックを削除
//  3. 残りのタグを空白に置換
//  4. 連続する空白を1つにまとめ、前後をトリム
func CleanHTML(html string) string {
	text := styleBlockRe.ReplaceAllString(html, "")
	text = scriptBlockRe.ReplaceAllString(text, "")
	text = tagRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Truncate は、テキストを先頭から最大 maxChars 文字(rune単位)に切り詰めます。
// maxChars が0以下の場合は切り詰めません。
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	count := 0
	for i := range text {
		if count == maxChars {
			return text[:i]
		}
		count++
	}
	return text
}
