package fetcher

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/net/html/charset"
)

// ErrContentTooLarge は、本文 (展開後を含む) が上限を超えたことを表します。
var ErrContentTooLarge = errors.New("content too large")

// readLimited は r から最大 limit バイトを読み込みます。limit を超える場合は ErrContentTooLarge を返します。
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("本文の読み込みに失敗しました: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (exceeds %d bytes)", ErrContentTooLarge, limit)
	}
	return data, nil
}

// decodeBody は Content-Encoding を展開し、Content-Type の charset に従って UTF-8 に変換します。
// Accept-Encoding を明示的に送っているため、net/http の自動展開は働きません。
// 展開後のサイズも limit で制限します。
func decodeBody(raw []byte, contentEncoding, contentType string, limit int64) (string, error) {
	decompressed, err := decompress(raw, contentEncoding, limit)
	if err != nil {
		return "", err
	}

	r, err := charset.NewReader(bytes.NewReader(decompressed), contentType)
	if err != nil {
		// 未知の charset はそのまま扱う
		return string(decompressed), nil
	}
	utf8Body, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("文字コードの変換に失敗しました: %w", err)
	}
	return string(utf8Body), nil
}

func decompress(raw []byte, contentEncoding string, limit int64) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "", "identity":
		return raw, nil
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("gzipの展開に失敗しました: %w", err)
		}
		defer zr.Close()
		return readLimited(zr, limit)
	case "deflate":
		// RFC 9110 では zlib 形式だが、生の deflate を返すサーバーもある
		if zr, err := zlib.NewReader(bytes.NewReader(raw)); err == nil {
			defer zr.Close()
			return readLimited(zr, limit)
		}
		fr := flate.NewReader(bytes.NewReader(raw))
		defer fr.Close()
		return readLimited(fr, limit)
	case "zstd":
		d, err := zstd.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("zstdの展開に失敗しました: %w", err)
		}
		defer d.Close()
		return readLimited(d, limit)
	default:
		return nil, fmt.Errorf("未対応の Content-Encoding です: %s", contentEncoding)
	}
}
