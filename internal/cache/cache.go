// Package cache memoizes inference results for the lifetime of one
// analysis session.
package cache

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry[V any] struct {
	value V
	done  bool
}

// Memo maps content keys to computed values. A key requested again while
// its value is still being computed yields the zero value, which breaks
// recursive cycles.
type Memo[V any] struct {
	mu      sync.Mutex
	entries map[string]*entry[V]
	hits    int
}

func NewMemo[V any]() *Memo[V] {
	return &Memo[V]{entries: make(map[string]*entry[V])}
}

// Do returns the cached value for key, computing it with fn on a miss.
func (m *Memo[V]) Do(key string, fn func() V) V {
	m.mu.Lock()
	if e, ok := m.entries[key]; ok {
		m.hits++
		m.mu.Unlock()
		return e.value
	}
	e := &entry[V]{}
	m.entries[key] = e
	m.mu.Unlock()

	v := fn()

	m.mu.Lock()
	e.value, e.done = v, true
	m.mu.Unlock()
	return v
}

// Len returns the number of completed entries.
func (m *Memo[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.done {
			n++
		}
	}
	return n
}

// Hits returns how many lookups were served from the cache.
func (m *Memo[V]) Hits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits
}

func (m *Memo[V]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*entry[V])
	m.hits = 0
}

type resetter interface {
	Reset()
}

// Session scopes memo tables to one top-level analysis. Renewing the
// session drops every registered table.
type Session struct {
	mu      sync.Mutex
	id      uuid.UUID
	started time.Time
	memos   []resetter
}

func NewSession() *Session {
	return &Session{id: uuid.New(), started: time.Now()}
}

func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id.String()
}

func (s *Session) Started() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Register ties m to the session lifetime.
func (s *Session) Register(m resetter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memos = append(s.memos, m)
}

// Renew starts a new session: a new id and empty memo tables.
func (s *Session) Renew() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = uuid.New()
	s.started = time.Now()
	for _, m := range s.memos {
		m.Reset()
	}
}
