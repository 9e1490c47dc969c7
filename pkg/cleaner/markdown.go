package cleaner

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
)

var excessiveLinesRe = regexp.MustCompile(`\n{4,}`)

// ToMarkdown は、HTMLをGitHub Flavored Markdownに変換します。
// pageURL のホストは相対リンクを絶対URLに解決するために使われます。
func ToMarkdown(html, pageURL string) (string, error) {
	domain := ""
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		domain = u.Scheme + "://" + u.Host
	}

	converter := md.NewConverter(domain, true, nil)
	converter.Use(plugin.GitHubFlavored())
	// script/style はMarkdownに不要なので先に落とす
	converter.Remove("script", "style", "noscript")

	markdown, err := converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("Markdownへの変換に失敗しました: %w", err)
	}

	markdown = excessiveLinesRe.ReplaceAllString(markdown, "\n\n\n")
	lines := strings.Split(markdown, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
