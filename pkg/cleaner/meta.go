package cleaner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dyatlov/go-opengraph/opengraph"
)

// PageMeta は、HTMLから抽出したページのメタ情報です。
type PageMeta struct {
	Title       string
	Description string
	SiteName    string
}

// ExtractMeta は、OpenGraph のタイトルと説明を優先して抽出し、
// 欠けている項目は <title> と meta description で補います。
// 何も見つからない場合は空の PageMeta を返します。
func ExtractMeta(html string) PageMeta {
	var meta PageMeta

	og := opengraph.NewOpenGraph()
	if err := og.ProcessHTML(strings.NewReader(html)); err == nil {
		meta.Title = strings.TrimSpace(og.Title)
		meta.Description = strings.TrimSpace(og.Description)
		meta.SiteName = strings.TrimSpace(og.SiteName)
	}
	if meta.Title != "" && meta.Description != "" {
		return meta
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return meta
	}
	if meta.Title == "" {
		meta.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if meta.Description == "" {
		meta.Description = metaDescription(doc)
	}
	return meta
}

func metaDescription(doc *goquery.Document) string {
	var desc string
	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name, _ := s.Attr("name")
		if !strings.EqualFold(name, "description") {
			return true
		}
		if content, ok := s.Attr("content"); ok && strings.TrimSpace(content) != "" {
			desc = strings.TrimSpace(content)
			return false
		}
		return true
	})
	return desc
}
