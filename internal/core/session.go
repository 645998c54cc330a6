package core

// session.go holds per-visitor state. Each session owns at most one Table;
// there is no sharing between sessions. A session is created on a visitor's
// first request, gains a table on an explicit load and is dropped once it
// has been idle longer than the store's TTL.

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is one visitor's state.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu       sync.RWMutex
	table    *Table
	report   LoadReport
	lastSeen time.Time
}

// Table returns the loaded table, or false if nothing has been loaded.
func (s *Session) Table() (*Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table, s.table != nil
}

// LastLoad returns the report of the load that produced the current table.
func (s *Session) LastLoad() (LoadReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report, s.table != nil
}

// Load replaces the session's table with the result of load. The current
// table is cleared first, so a failed load leaves the session unloaded
// rather than holding stale data.
func (s *Session) Load(ctx context.Context, load func(context.Context) (*Table, LoadReport, error)) (LoadReport, error) {
	s.Clear()

	table, report, err := load(ctx)
	if err != nil {
		return LoadReport{}, err
	}

	s.mu.Lock()
	s.table = table
	s.report = report
	s.mu.Unlock()

	return report, nil
}

// Clear drops the loaded table.
func (s *Session) Clear() {
	s.mu.Lock()
	s.table = nil
	s.report = LoadReport{}
	s.mu.Unlock()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) seen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

// SessionStore keeps sessions in memory with idle expiry and a size cap.
type SessionStore struct {
	ttl time.Duration
	max int
	now func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewSessionStore creates a store. Sessions idle longer than ttl expire;
// at most max sessions are held, evicting unloaded sessions first.
func NewSessionStore(ttl time.Duration, max int) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		max:      max,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Create starts a new, unloaded session.
func (st *SessionStore) Create() *Session {
	now := st.now()
	s := &Session{ID: uuid.New(), CreatedAt: now, lastSeen: now}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.max > 0 && len(st.sessions) >= st.max {
		st.sweepLocked(now)
	}
	if st.max > 0 && len(st.sessions) >= st.max {
		st.evictOldestLocked()
	}
	st.sessions[s.ID] = s

	return s
}

// Get returns a live session and refreshes its idle timer.
// Expired sessions are removed and reported as missing.
func (st *SessionStore) Get(id uuid.UUID) (*Session, bool) {
	now := st.now()

	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	if st.expired(s, now) {
		delete(st.sessions, id)
		return nil, false
	}
	s.touch(now)
	return s, true
}

// Delete ends a session.
func (st *SessionStore) Delete(id uuid.UUID) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len returns the number of held sessions, expired or not.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep removes expired sessions and returns how many were removed.
func (st *SessionStore) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.sweepLocked(st.now())
}

// Run sweeps every interval until ctx is cancelled.
func (st *SessionStore) Run(ctx context.Context, interval time.Duration, onSweep func(removed, remaining int)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			removed := st.Sweep()
			if onSweep != nil {
				onSweep(removed, st.Len())
			}
		}
	}
}

func (st *SessionStore) expired(s *Session, now time.Time) bool {
	return st.ttl > 0 && now.Sub(s.seen()) > st.ttl
}

func (st *SessionStore) sweepLocked(now time.Time) int {
	removed := 0
	for id, s := range st.sessions {
		if st.expired(s, now) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// evictOldestLocked drops the least recently seen session that has no table,
// or the least recently seen session overall when every session is loaded.
// Visitors that never load cannot push loaded tables out this way.
func (st *SessionStore) evictOldestLocked() {
	var oldest, oldestIdle *Session
	for _, s := range st.sessions {
		seen := s.seen()
		if oldest == nil || seen.Before(oldest.seen()) {
			oldest = s
		}
		if _, loaded := s.Table(); !loaded && (oldestIdle == nil || seen.Before(oldestIdle.seen())) {
			oldestIdle = s
		}
	}

	victim := oldestIdle
	if victim == nil {
		victim = oldest
	}
	if victim != nil {
		delete(st.sessions, victim.ID)
	}
}
