package chat

import (
	"log/slog"
	"sync"

	"github.com/shouni/web-ai-chat-go/pkg/types"
)

// Notifier は、セッションからユーザーへの通知を受け取るインターフェースです。
type Notifier interface {
	Notify(n types.Notification)
}

// LogNotifier は通知を slog に出力します。CLI で利用します。
type LogNotifier struct{}

// Notify は重大度に応じたレベルで通知をログに出力します。
func (LogNotifier) Notify(n types.Notification) {
	switch n.Severity {
	case types.SeverityError:
		slog.Error(n.Message)
	case types.SeverityWarning:
		slog.Warn(n.Message)
	default:
		slog.Info(n.Message)
	}
}

// Recorder は通知を蓄積し、Drain でまとめて取り出せるようにします。
// Web UI がレスポンスに通知を載せるために利用します。
type Recorder struct {
	mu    sync.Mutex
	items []types.Notification
}

// Notify は通知を蓄積します。
func (r *Recorder) Notify(n types.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// Drain は蓄積した通知を返し、内部のバッファを空にします。
func (r *Recorder) Drain() []types.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.items
	r.items = nil
	return items
}

var (
	_ Notifier = LogNotifier{}
	_ Notifier = (*Recorder)(nil)
)
