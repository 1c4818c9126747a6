package dashboard

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionRecorder is told the number of live sessions.
type SessionRecorder interface {
	SetSessions(n int)
}

type session struct {
	ctrl *Controller
	seen time.Time
}

// Sessions is a bounded set of controllers keyed by session id. Idle
// sessions expire after the ttl; at capacity the least recently seen
// session is evicted.
type Sessions struct {
	mu       sync.Mutex
	items    map[string]*session
	maxSize  int
	ttl      time.Duration
	deps     Deps
	now      func() time.Time
	recorder SessionRecorder
}

// NewSessions creates an empty session set.
func NewSessions(deps Deps, maxSize int, ttl time.Duration, recorder SessionRecorder) (*Sessions, error) {
	deps, err := deps.normalized()
	if err != nil {
		return nil, err
	}
	if maxSize <= 0 {
		maxSize = 1
	}
	return &Sessions{
		items:    make(map[string]*session),
		maxSize:  maxSize,
		ttl:      ttl,
		deps:     deps,
		now:      deps.Now,
		recorder: recorder,
	}, nil
}

// Create starts a new session.
func (s *Sessions) Create() (*Controller, error) {
	ctrl, err := NewController(uuid.NewString(), s.deps)
	if err != nil {
		return nil, err
	}

	var evicted *Controller

	s.mu.Lock()
	if len(s.items) >= s.maxSize {
		evicted = s.evictOldestLocked()
	}
	s.items[ctrl.ID()] = &session{ctrl: ctrl, seen: s.now()}
	n := len(s.items)
	s.mu.Unlock()

	if evicted != nil {
		s.deps.Logger.Debug("session evicted", zap.String("session", evicted.ID()))
		evicted.Close()
	}
	s.record(n)
	return ctrl, nil
}

func (s *Sessions) evictOldestLocked() *Controller {
	var oldestID string
	var oldest time.Time
	for id, sess := range s.items {
		if oldestID == "" || sess.seen.Before(oldest) {
			oldestID, oldest = id, sess.seen
		}
	}
	if oldestID == "" {
		return nil
	}
	ctrl := s.items[oldestID].ctrl
	delete(s.items, oldestID)
	return ctrl
}

// Get returns the live session id and marks it as seen.
func (s *Sessions) Get(id string) (*Controller, bool) {
	s.mu.Lock()
	sess, ok := s.items[id]
	if !ok {
		s.mu.Unlock()
		return nil, false
	}
	now := s.now()
	if s.expired(sess, now) {
		delete(s.items, id)
		n := len(s.items)
		s.mu.Unlock()
		sess.ctrl.Close()
		s.record(n)
		return nil, false
	}
	sess.seen = now
	s.mu.Unlock()
	return sess.ctrl, true
}

func (s *Sessions) expired(sess *session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.seen) > s.ttl
}

// Sweep closes expired sessions and returns how many were removed.
func (s *Sessions) Sweep() int {
	now := s.now()
	var closed []*Controller

	s.mu.Lock()
	for id, sess := range s.items {
		if s.expired(sess, now) {
			delete(s.items, id)
			closed = append(closed, sess.ctrl)
		}
	}
	n := len(s.items)
	s.mu.Unlock()

	for _, ctrl := range closed {
		ctrl.Close()
	}
	s.record(n)
	return len(closed)
}

// List returns the live controllers ordered by id.
func (s *Sessions) List() []*Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Controller, 0, len(s.items))
	for _, sess := range s.items {
		out = append(out, sess.ctrl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Close closes every session.
func (s *Sessions) Close() {
	s.mu.Lock()
	items := s.items
	s.items = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range items {
		sess.ctrl.Close()
	}
	s.record(0)
}

func (s *Sessions) record(n int) {
	if s.recorder != nil {
		s.recorder.SetSessions(n)
	}
}

// States returns a snapshot of every live session ordered by id.
func (s *Sessions) States() []State {
	ctrls := s.List()
	out := make([]State, 0, len(ctrls))
	for _, c := range ctrls {
		out = append(out, c.State())
	}
	return out
}

// State returns the snapshot of session id without marking it as seen.
func (s *Sessions) State(id string) (State, bool) {
	s.mu.Lock()
	sess, ok := s.items[id]
	s.mu.Unlock()
	if !ok {
		return State{}, false
	}
	return sess.ctrl.State(), true
}
