package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shouni/web-ai-chat-go/internal/chat"
	"github.com/shouni/web-ai-chat-go/pkg/types"
)

type loadRequest struct {
	URL string `json:"url"`
}

type loadResponse struct {
	URL           string               `json:"url"`
	Title         string               `json:"title,omitempty"`
	SiteName      string               `json:"siteName,omitempty"`
	HTMLContent   string               `json:"htmlContent,omitempty"`
	Embeddable    bool                 `json:"embeddable"`
	Canceled      bool                 `json:"canceled"`
	Error         string               `json:"error,omitempty"`
	Notifications []types.Notification `json:"notifications"`
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	chat.Answer
	Notifications []types.Notification `json:"notifications"`
}

func (s *Server) handleLoad(c *gin.Context) {
	entry, ok := s.session(c)
	if !ok {
		return
	}

	var req loadRequest
	if !bindJSON(c, &req) {
		return
	}
	rawURL := strings.TrimSpace(req.URL)
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	traceID, _ := c.Get(traceIDKey)
	slog.Debug("ページを取得します", "trace_id", traceID, "url", rawURL)

	page, err := entry.session.Load(c.Request.Context(), rawURL)
	if err != nil {
		message := chat.FetchErrorMessage(err)
		var loadErr *chat.LoadError
		if errors.As(err, &loadErr) {
			message = loadErr.Message
		}
		c.JSON(http.StatusBadGateway, loadResponse{
			URL:           rawURL,
			Error:         message,
			Notifications: drain(entry),
		})
		return
	}

	c.JSON(http.StatusOK, loadResponse{
		URL:           page.URL,
		Title:         page.Title,
		SiteName:      page.SiteName,
		HTMLContent:   page.HTML,
		Embeddable:    page.Embeddable,
		Canceled:      page.Canceled,
		Notifications: drain(entry),
	})
}

func (s *Server) handleCancel(c *gin.Context) {
	entry, ok := s.session(c)
	if !ok {
		return
	}
	entry.session.Cancel()
	c.JSON(http.StatusOK, gin.H{"canceled": true})
}

func (s *Server) handleAsk(c *gin.Context) {
	entry, ok := s.session(c)
	if !ok {
		return
	}

	var req askRequest
	if !bindJSON(c, &req) {
		return
	}

	answer := entry.session.Ask(c.Request.Context(), req.Question)
	c.JSON(http.StatusOK, askResponse{
		Answer:        answer,
		Notifications: drain(entry),
	})
}

// bindJSON は application/json のボディのみを受け付けます。
func bindJSON(c *gin.Context, v any) bool {
	if !strings.HasPrefix(c.ContentType(), "application/json") {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "content type must be application/json"})
		return false
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBodyBytes)
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

func drain(entry *sessionEntry) []types.Notification {
	items := entry.recorder.Drain()
	if items == nil {
		return []types.Notification{}
	}
	return items
}
