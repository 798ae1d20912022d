package flipper

import (
	"sync"
	"time"

	"osrs-flipper/internal/quant"
)

// SessionState describes the per-user suggestion queue.
type SessionState int

const (
	// SessionEmpty means no queue has been built yet, or the last scan
	// produced nothing.
	SessionEmpty SessionState = iota
	// SessionFresh means the queue is inside its TTL and servable.
	SessionFresh
	// SessionStale means the queue exists but has outlived its TTL.
	SessionStale
)

// Session holds one user's ranked candidate queue. Serving the same
// suggestion repeatedly inside the TTL keeps the client stable; skips walk
// the queue without burning a rescan.
type Session struct {
	mu      sync.Mutex
	queue   []quant.Candidate
	pos     int
	builtAt time.Time
	skips   map[int]time.Time

	ttl        time.Duration
	skipMemory time.Duration
}

func NewSession(cfg *quant.TradingConfig) *Session {
	return &Session{
		skips:      make(map[int]time.Time),
		ttl:        time.Duration(cfg.QueueTTLSeconds) * time.Second,
		skipMemory: time.Duration(cfg.SkipMemorySeconds) * time.Second,
	}
}

// State reports whether the queue is servable at now.
func (s *Session) State(now time.Time) SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case len(s.queue) == 0:
		return SessionEmpty
	case now.Sub(s.builtAt) < s.ttl:
		return SessionFresh
	default:
		return SessionStale
	}
}

// Serve returns the current candidate when the queue is fresh.
func (s *Session) Serve(now time.Time) (quant.Candidate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 || now.Sub(s.builtAt) >= s.ttl {
		return quant.Candidate{}, false
	}
	return s.queue[s.pos], true
}

// Advance moves the cursor to the next candidate, wrapping at the end, and
// returns it. Repeat polls inside the TTL cycle the queue this way instead
// of rescanning the market.
func (s *Session) Advance(now time.Time) (quant.Candidate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 || now.Sub(s.builtAt) >= s.ttl {
		return quant.Candidate{}, false
	}
	s.pos = (s.pos + 1) % len(s.queue)
	return s.queue[s.pos], true
}

// Skip is Advance plus memory: the current candidate stays out of rebuilt
// queues for the skip-memory window.
func (s *Session) Skip(now time.Time) (quant.Candidate, bool) {
	s.mu.Lock()
	if len(s.queue) > 0 && now.Sub(s.builtAt) < s.ttl {
		s.skips[s.queue[s.pos].ItemID] = now
	}
	s.mu.Unlock()
	return s.Advance(now)
}

// Rebuild installs a new queue, dropping candidates skipped within the
// skip-memory window, and resets the cursor.
func (s *Session) Rebuild(candidates []quant.Candidate, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, at := range s.skips {
		if now.Sub(at) >= s.skipMemory {
			delete(s.skips, id)
		}
	}

	queue := make([]quant.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, skipped := s.skips[c.ItemID]; skipped {
			continue
		}
		queue = append(queue, c)
	}
	s.queue = queue
	s.pos = 0
	s.builtAt = now
}

// Invalidate drops the queue so the next request rescans. Called after a
// buy so the same item is not suggested again immediately.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = nil
	s.pos = 0
}

// SessionManager hands out one session per display name.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	cfg      *quant.TradingConfig
}

func NewSessionManager(cfg *quant.TradingConfig) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
	}
}

func (m *SessionManager) Get(displayName string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[displayName]
	if !ok {
		s = NewSession(m.cfg)
		m.sessions[displayName] = s
	}
	return s
}
