package fetcher

import "net/http"

// DefaultUserAgent は、一般的なデスクトップブラウザを模倣した User-Agent です。
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/138.0.0.0 Safari/537.36"

const acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7"

// acceptEncoding は decodeBody が展開できる形式だけを宣言します。
const acceptEncoding = "gzip, deflate, zstd"

// BrowserHeaders は、ボット判定を避けるためのブラウザ風リクエストヘッダーを返します。
// Referer には対象URLのオリジンを使います。
func BrowserHeaders(userAgent, origin string) http.Header {
	h := http.Header{}
	h.Set("User-Agent", userAgent)
	h.Set("Accept", acceptHTML)
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Accept-Encoding", acceptEncoding)
	h.Set("Cache-Control", "no-cache")
	h.Set("Pragma", "no-cache")
	h.Set("Referer", origin+"/")
	h.Set("Sec-Ch-Ua", `"Not)A;Brand";v="99", "Chromium";v="138"`)
	h.Set("Sec-Ch-Ua-Mobile", "?0")
	h.Set("Sec-Ch-Ua-Platform", `"macOS"`)
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Sec-Fetch-Site", "same-origin")
	h.Set("Sec-Fetch-User", "?1")
	h.Set("Upgrade-Insecure-Requests", "1")
	return h
}
