package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTTL         = 30 * time.Minute
	DefaultSweepPeriod = time.Minute
	DefaultMaxSessions = 100
)

// ErrTooManySessions is returned by Create when the store is full
var ErrTooManySessions = errors.New("too many active sessions")

// Store tracks live sessions and expires the idle ones
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	max      int
	now      func() time.Time
	logger   *logrus.Logger
}

// NewStore creates a store holding at most maxSessions sessions, each of
// which expires after ttl without use
func NewStore(ttl time.Duration, maxSessions int, logger *logrus.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		max:      maxSessions,
		now:      time.Now,
		logger:   logger,
	}
}

// Create starts a new session. When the store is full, expired sessions are
// swept first and ErrTooManySessions is returned if none were.
func (st *Store) Create() (*Session, error) {
	now := st.now()
	s := newSession(uuid.NewString(), now)

	st.mu.Lock()
	if len(st.sessions) >= st.max {
		st.sweepLocked(now)
	}
	if len(st.sessions) >= st.max {
		st.mu.Unlock()
		st.logger.WithField("limit", st.max).Warn("session limit reached")
		return nil, ErrTooManySessions
	}
	st.sessions[s.ID] = s
	st.mu.Unlock()

	st.logger.WithField("session", s.ID).Debug("session created")
	return s, nil
}

// Get returns the session with the given ID and refreshes its access time
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, false
	}
	s.touch(st.now())
	return s, true
}

// Delete tears down a session. It reports whether the session existed.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	st.logger.WithField("session", id).Debug("session deleted")
	return true
}

// Len returns the number of live sessions
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep removes sessions idle for longer than the ttl and returns how many
// were removed
func (st *Store) Sweep(now time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.sweepLocked(now)
}

func (st *Store) sweepLocked(now time.Time) int {
	removed := 0
	for id, s := range st.sessions {
		if now.Sub(s.LastAccess()) > st.ttl {
			delete(st.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		st.logger.WithFields(logrus.Fields{
			"removed":   removed,
			"remaining": len(st.sessions),
		}).Info("expired sessions swept")
	}
	return removed
}

// Run sweeps expired sessions every period until ctx is cancelled
func (st *Store) Run(ctx context.Context, period time.Duration) {
	if period <= 0 {
		period = DefaultSweepPeriod
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			st.Sweep(t)
		}
	}
}
