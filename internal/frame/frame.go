// Package frame は、取得したページをフレーム内に表示してよいかの判定と、
// 表示用HTMLの加工を担当します。
package frame

import (
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"
)

// Verdict は埋め込み可否の判定結果です。
type Verdict struct {
	Embeddable bool
	// Reason は埋め込み不可の場合に、判定の根拠となったヘッダー値を保持します。
	Reason string
}

// Check は、X-Frame-Options と Content-Security-Policy ヘッダーから埋め込み可否を判定します。
// DENY / SAMEORIGIN、または frame-ancestors 'none' / 'self' の場合は埋め込み不可です。
func Check(h http.Header) Verdict {
	xfo := strings.ToUpper(strings.TrimSpace(h.Get("X-Frame-Options")))
	if xfo == "DENY" || xfo == "SAMEORIGIN" {
		return Verdict{Embeddable: false, Reason: "X-Frame-Options: " + xfo}
	}

	for _, csp := range h.Values("Content-Security-Policy") {
		if strings.Contains(csp, "frame-ancestors 'none'") || strings.Contains(csp, "frame-ancestors 'self'") {
			return Verdict{Embeddable: false, Reason: "Content-Security-Policy: " + csp}
		}
	}

	return Verdict{Embeddable: true}
}

var (
	headOpenRe = regexp.MustCompile(`(?i)<head[^>]*>`)
	htmlOpenRe = regexp.MustCompile(`(?i)<html[^>]*>`)
)

// Inject は、相対リンクを元サイトに解決する <base href> と、フレーム脱出を抑止するスクリプトを
// HTMLに注入します。
//
// <head> があればその直後に、なければ <html> の直後に新しい <head> を、
// どちらもなければ文書全体を組み立てます。
func Inject(doc, pageURL string) string {
	baseTag := fmt.Sprintf(`<base href="%s">`, html.EscapeString(pageURL))

	if loc := headOpenRe.FindStringIndex(doc); loc != nil {
		return doc[:loc[1]] + "\n" + baseTag + "\n" + sandboxFixScript + doc[loc[1]:]
	}
	if loc := htmlOpenRe.FindStringIndex(doc); loc != nil {
		return doc[:loc[1]] + "\n<head>" + baseTag + sandboxFixScript + "</head>" + doc[loc[1]:]
	}
	return "<!DOCTYPE html><html><head>" + baseTag + sandboxFixScript + "</head><body>" + doc + "</body></html>"
}

// SecurityNotice は、埋め込み不可のページの代わりに表示するHTMLを返します。
// テキストは取得済みで、チャットには利用できることを伝えます。
func SecurityNotice(pageURL string, v Verdict) string {
	return fmt.Sprintf(securityNoticeTemplate,
		html.EscapeString(pageURL),
		html.EscapeString(pageURL),
		html.EscapeString(v.Reason))
}

// WarningMessage は、埋め込み不可の場合にユーザーへ通知する文言です。
const WarningMessage = "Website content was loaded for the AI, but it cannot be displayed due to the site's security policy."

const securityNoticeTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; display: flex; align-items: center; justify-content: center; height: 100vh; margin: 0; background: #f6f6f6; color: #333; }
.notice { max-width: 32rem; padding: 2rem; border: 1px solid #ddd; border-radius: 8px; background: #fff; text-align: center; }
.notice h2 { margin-top: 0; }
.notice code { font-size: 0.85em; color: #666; word-break: break-all; }
</style>
</head>
<body>
<div class="notice">
<h2>This page cannot be displayed here</h2>
<p><a href="%s" target="_blank" rel="noopener noreferrer">%s</a> does not allow being shown inside a frame.</p>
<p>Its text content has been loaded, so you can still ask questions about it in the chat.</p>
<p><code>%s</code></p>
</div>
</body>
</html>`

// sandboxFixScript は、フレーム内のページが top/parent へ脱出したり、
// サンドボックス起因のエラーでコンソールを埋めたりするのを抑止します。
const sandboxFixScript = `<script>
(function() {
	var originalError = console.error;
	var originalWarn = console.warn;
	var noisy = ['sandboxed', 'SecurityError', 'CORS', 'ERR_BLOCKED', 'NotSamesite', 'Forbidden'];
	console.error = function() {
		var first = arguments[0] ? String(arguments[0]) : '';
		for (var i = 0; i < noisy.length; i++) {
			if (first.indexOf(noisy[i]) !== -1) { return; }
		}
		originalError.apply(console, arguments);
	};
	console.warn = function() {
		var first = arguments[0] ? String(arguments[0]) : '';
		if (first.indexOf('sandbox') !== -1) { return; }
		originalWarn.apply(console, arguments);
	};
	try {
		Object.defineProperty(window, 'top', { configurable: false, get: function() { return window.self; } });
		Object.defineProperty(window, 'parent', { configurable: false, get: function() { return window.self; } });
	} catch (e) {}
	window.onbeforeunload = function() { return false; };
	window.addEventListener('error', function(e) { e.preventDefault(); e.stopPropagation(); return true; }, true);
	window.addEventListener('unhandledrejection', function(e) { e.preventDefault(); return true; });
	var removeBlockers = function() {
		try {
			document.querySelectorAll('div, span, section').forEach(function(el) {
				var style = window.getComputedStyle(el);
				var zIndex = parseInt(style.zIndex, 10);
				if ((style.position === 'fixed' || style.position === 'absolute') && zIndex > 999) {
					if (parseFloat(style.opacity) === 0 || style.pointerEvents === 'none' ||
						style.backgroundColor === 'transparent' || style.backgroundColor === 'rgba(0, 0, 0, 0)') {
						el.style.display = 'none';
					}
				}
			});
		} catch (e) {}
	};
	window.addEventListener('load', function() {
		removeBlockers();
		setInterval(removeBlockers, 2000);
	});
	setTimeout(removeBlockers, 1000);
})();
</script>`
