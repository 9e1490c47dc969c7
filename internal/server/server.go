// Package server は、ページ表示とチャットを並べたWeb UIとそのJSON APIを提供します。
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed static
var staticFiles embed.FS

const (
	sessionCookieName = "web_ai_chat_session"
	// DefaultSessionIdleTTL は、使われていないセッションを保持する時間です。
	DefaultSessionIdleTTL = 30 * time.Minute
	shutdownTimeout       = 10 * time.Second
	maxRequestBodyBytes   = 64 << 10
)

// Server は gin のルーターとブラウザごとのセッションを保持します。
type Server struct {
	router   *gin.Engine
	sessions *sessionStore
	secure   bool
}

// Option は Server の設定を変更します。
type Option func(*Server)

// WithSessionIdleTTL はセッションの保持時間を変更します。
func WithSessionIdleTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.sessions.idleTTL = ttl
	}
}

// WithSecureCookie はセッションCookieに Secure 属性を付けます。HTTPSの背後で動かす場合に使います。
func WithSecureCookie(secure bool) Option {
	return func(s *Server) {
		s.secure = secure
	}
}

// New は factory でセッションを作成する Server を構築します。
func New(factory SessionFactory, opts ...Option) (*Server, error) {
	if factory == nil {
		return nil, errors.New("SessionFactory は nil にできません")
	}

	s := &Server{
		sessions: newSessionStore(factory, DefaultSessionIdleTTL),
	}
	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.Use(recovery())
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	router.Use(requestContext())
	router.Use(securityHeaders())

	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, fmt.Errorf("静的ファイルの読み込みに失敗しました: %w", err)
	}
	index, err := fs.ReadFile(staticFS, "index.html")
	if err != nil {
		return nil, fmt.Errorf("index.html の読み込みに失敗しました: %w", err)
	}

	router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", index)
	})
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.POST("/load", s.handleLoad)
	api.POST("/cancel", s.handleCancel)
	api.POST("/ask", s.handleAsk)

	s.router = router
	return s, nil
}

// Handler は http.Handler としてのルーターを返します。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run は addr で待ち受け、ctx がキャンセルされるとグレースフルに停止します。
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Web UI を起動しました", slog.String("url", "http://"+addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("サーバーの起動に失敗しました: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("サーバーを停止しています...")
	s.sessions.closeAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("サーバーの停止に失敗しました: %w", err)
	}
	return nil
}

// session はリクエストのCookieに対応するセッションを返します。
// Cookie の有効期限はサーバー側の保持時間に合わせて、リクエストのたびに延長します。
func (s *Server) session(c *gin.Context) (*sessionEntry, bool) {
	id, _ := c.Cookie(sessionCookieName)
	id, entry, err := s.sessions.get(id)
	if err != nil {
		slog.Error("セッションの作成に失敗しました", slog.Any("error", err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return nil, false
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(sessionCookieName, id, int(s.sessions.idleTTL.Seconds()), "/", "", s.secure, true)
	return entry, true
}
