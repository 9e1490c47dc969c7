package iohandler

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
)

const gcsScheme = "gs://"

// ClientFactory は GCS クライアントを生成する関数です。テストで差し替えられます。
type ClientFactory func(ctx context.Context) (*storage.Client, error)

// IOHandler は、ローカルファイル・標準入出力・GCS オブジェクトの読み書きを扱います。
// GCS クライアントは gs:// のパスが初めて指定されたときに一度だけ初期化されます。
type IOHandler struct {
	newClient ClientFactory

	mu     sync.Mutex
	client *storage.Client
}

// New は新しい IOHandler を作成します。
func New() *IOHandler {
	return NewWithFactory(func(ctx context.Context) (*storage.Client, error) {
		return storage.NewClient(ctx)
	})
}

// NewWithFactory は、指定した ClientFactory を使う IOHandler を作成します。
func NewWithFactory(f ClientFactory) *IOHandler {
	return &IOHandler{newClient: f}
}

// Close は初期化済みの GCS クライアントを閉じます。
func (h *IOHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.client == nil {
		return nil
	}
	err := h.client.Close()
	h.client = nil
	return err
}

// IsGCSURI は path が gs:// で始まるかを返します。
func IsGCSURI(path string) bool {
	return strings.HasPrefix(path, gcsScheme)
}

// ParseGCSURI は gs://bucket-name/object-name をバケット名とオブジェクト名に分解します。
func ParseGCSURI(uri string) (bucket, object string, err error) {
	if !IsGCSURI(uri) {
		return "", "", fmt.Errorf("GCS URIではありません: %s", uri)
	}
	parts := strings.SplitN(uri[len(gcsScheme):], "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("無効なGCS URI形式です: %s (gs://bucket-name/object-name の形式で指定してください)", uri)
	}
	return parts[0], parts[1], nil
}

// Open は、ファイルパスを検査し、ローカルファイルまたはGCSからストリームを開きます。
func (h *IOHandler) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if !IsGCSURI(path) {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("ローカルファイルのオープンに失敗しました: %w", err)
		}
		return file, nil
	}

	bucket, object, err := ParseGCSURI(path)
	if err != nil {
		return nil, err
	}
	client, err := h.gcsClient(ctx)
	if err != nil {
		return nil, err
	}
	rc, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("GCSファイルの読み込みに失敗しました (URI: %s): %w", path, err)
	}
	return rc, nil
}

// ReadLines は path を開き、空行と # で始まるコメント行を除いた各行を返します。
func (h *IOHandler) ReadLines(ctx context.Context, path string) ([]string, error) {
	rc, err := h.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var lines []string
	scanner := bufio.NewScanner(rc)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ファイルの読み取り中にエラーが発生しました: %w", err)
	}
	return lines, nil
}

func (h *IOHandler) gcsClient(ctx context.Context) (*storage.Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.client != nil {
		return h.client, nil
	}
	client, err := h.newClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("GCSクライアントの初期化に失敗しました: %w", err)
	}
	h.client = client
	return client, nil
}
