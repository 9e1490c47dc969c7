package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shouni/web-ai-chat-go/internal/chat"
	"github.com/shouni/web-ai-chat-go/internal/metrics"
)

// SessionFactory は、通知の受け取り先を指定して新しいセッションを作成します。
type SessionFactory func(notifier chat.Notifier) (*chat.Session, error)

type sessionEntry struct {
	session  *chat.Session
	recorder *chat.Recorder
	lastSeen time.Time
}

// sessionStore は、ブラウザごとの chat.Session を Cookie のIDで保持します。
// idleTTL を超えて使われていないセッションは、新しいセッションの作成時に破棄されます。
type sessionStore struct {
	factory SessionFactory
	idleTTL time.Duration
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*sessionEntry
}

func newSessionStore(factory SessionFactory, idleTTL time.Duration) *sessionStore {
	return &sessionStore{
		factory: factory,
		idleTTL: idleTTL,
		now:     time.Now,
		entries: make(map[string]*sessionEntry),
	}
}

// get は id のセッションを返します。存在しない場合は新しいIDでセッションを作成します。
// 戻り値の string は実際に使われたIDです。
func (s *sessionStore) get(id string) (string, *sessionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[id]; ok && id != "" {
		e.lastSeen = now
		return id, e, nil
	}

	s.evictIdleLocked(now)

	rec := &chat.Recorder{}
	session, err := s.factory(rec)
	if err != nil {
		return "", nil, err
	}
	newID := uuid.NewString()
	e := &sessionEntry{session: session, recorder: rec, lastSeen: now}
	s.entries[newID] = e
	metrics.ActiveSessions.Set(float64(len(s.entries)))
	return newID, e, nil
}

func (s *sessionStore) evictIdleLocked(now time.Time) {
	for id, e := range s.entries {
		if now.Sub(e.lastSeen) > s.idleTTL {
			e.session.Close()
			delete(s.entries, id)
		}
	}
	metrics.ActiveSessions.Set(float64(len(s.entries)))
}

// closeAll はすべてのセッションの実行中の取得を中断し、破棄します。
func (s *sessionStore) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		e.session.Close()
		delete(s.entries, id)
	}
	metrics.ActiveSessions.Set(0)
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
