package recipemanager

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"recipe-assistant/internal/storage"
)

// Session limits used when SessionLimits fields are zero.
const (
	DefaultSessionTTL  = 12 * time.Hour
	DefaultMaxSessions = 1000
)

// SessionLimits bounds the registry. A session idle for longer than TTL is
// dropped; when MaxSessions are live, creating another evicts the least
// recently used one.
type SessionLimits struct {
	TTL         time.Duration
	MaxSessions int
}

type sessionEntry struct {
	manager  *Manager
	lastSeen time.Time
}

// Sessions keeps one Manager per session ID. All managers share the store
// and the generator; each has its own current recipe.
type Sessions struct {
	store  storage.RecipeStore
	gen    Generator
	logger *slog.Logger
	limits SessionLimits
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

func NewSessions(store storage.RecipeStore, gen Generator, logger *slog.Logger, limits SessionLimits) *Sessions {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if limits.TTL <= 0 {
		limits.TTL = DefaultSessionTTL
	}
	if limits.MaxSessions <= 0 {
		limits.MaxSessions = DefaultMaxSessions
	}
	return &Sessions{
		store:    store,
		gen:      gen,
		logger:   logger,
		limits:   limits,
		now:      time.Now,
		sessions: make(map[string]*sessionEntry),
	}
}

// Get returns the manager for id, creating it on first use. An empty,
// malformed or expired id is replaced by a fresh one; the id actually used is
// returned. Expired sessions are swept on every call.
func (s *Sessions) Get(id string) (string, *Manager) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)

	if e, ok := s.sessions[id]; ok {
		e.lastSeen = now
		return id, e.manager
	}

	// Unknown ids are never adopted, so a client cannot pick its own.
	id = uuid.New().String()
	if len(s.sessions) >= s.limits.MaxSessions {
		s.evictOldestLocked()
	}
	m := NewManager(s.store, s.gen, s.logger.With("session", id))
	s.sessions[id] = &sessionEntry{manager: m, lastSeen: now}
	s.logger.Debug("Created session", "session", id, "sessions", len(s.sessions))
	return id, m
}

func (s *Sessions) sweepLocked(now time.Time) {
	for id, e := range s.sessions {
		if now.Sub(e.lastSeen) > s.limits.TTL {
			delete(s.sessions, id)
			s.logger.Debug("Expired session", "session", id)
		}
	}
}

func (s *Sessions) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, e := range s.sessions {
		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID, oldest = id, e.lastSeen
		}
	}
	if oldestID != "" {
		delete(s.sessions, oldestID)
		s.logger.Debug("Evicted session", "session", oldestID)
	}
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
