package iohandler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	utilio "github.com/shouni/go-utils/iohandler"
)

// ContentTypeMarkdown は Markdown 出力の Content-Type です。
const ContentTypeMarkdown = "text/markdown; charset=utf-8"

// ContentTypeText はプレーンテキスト出力の Content-Type です。
const ContentTypeText = "text/plain; charset=utf-8"

// WriteOutput は content を path に書き出します。
// path が空なら標準出力、gs:// で始まればGCS、それ以外はローカルファイル (ディレクトリは自動作成) です。
func (h *IOHandler) WriteOutput(ctx context.Context, path, content, contentType string) error {
	if !IsGCSURI(path) {
		if path != "" {
			dir := filepath.Dir(path)
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("ディレクトリの作成に失敗しました (%s): %w", dir, err)
			}
		}
		if err := utilio.WriteOutputString(path, content); err != nil {
			return fmt.Errorf("出力の書き込みに失敗しました: %w", err)
		}
		return nil
	}

	bucket, object, err := ParseGCSURI(path)
	if err != nil {
		return err
	}
	client, err := h.gcsClient(ctx)
	if err != nil {
		return err
	}

	wc := client.Bucket(bucket).Object(object).NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := wc.Write([]byte(content)); err != nil {
		wc.Close() // 書き込みエラー時は必ず閉じる
		return fmt.Errorf("GCSへのコンテンツ書き込みに失敗しました: %w", err)
	}
	// Close が実際のアップロードをトリガーします
	if err := wc.Close(); err != nil {
		return fmt.Errorf("GCS Writerのクローズに失敗しました (アップロード失敗): %w", err)
	}

	slog.Info("GCSに書き込みました", slog.String("uri", path), slog.Int("bytes", len(content)))
	return nil
}
