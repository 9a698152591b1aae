package server

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/unixblacksteel/mindmap/pkg/chat"
)

const defaultMaxSessions = 256

// sessions holds in-memory chat sessions. The least recently used one is
// dropped when the limit is reached; nothing outlives the process.
type sessions struct {
	gen    chat.Generator
	logger *log.Logger
	max    int

	mu   sync.Mutex
	byID map[string]*sessionEntry
}

type sessionEntry struct {
	session *chat.Session
	used    time.Time
}

func newSessions(max int, gen chat.Generator, logger *log.Logger) *sessions {
	if max <= 0 {
		max = defaultMaxSessions
	}
	return &sessions{gen: gen, logger: logger, max: max, byID: map[string]*sessionEntry{}}
}

// get returns the session for id, creating one under a new ID when id is
// empty or unknown.
func (s *sessions) get(id string, now time.Time) (string, *chat.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.byID[id]; ok {
		e.used = now
		return id, e.session
	}
	if len(s.byID) >= s.max {
		s.evict()
	}
	id = uuid.NewString()
	sess := chat.NewSession(s.gen, chat.WithLogger(s.logger))
	s.byID[id] = &sessionEntry{session: sess, used: now}
	return id, sess
}

func (s *sessions) evict() {
	var oldest string
	var at time.Time
	for id, e := range s.byID {
		if oldest == "" || e.used.Before(at) {
			oldest, at = id, e.used
		}
	}
	delete(s.byID, oldest)
}

func (s *sessions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}
