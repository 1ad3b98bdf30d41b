// Package conversation maintains the transient per-session chat state: the
// append-only message log, the in-flight submission gate, and the one-shot
// auto-submitted entry query. Nothing here is persisted.
package conversation

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn entry in the append-only log.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ErrTurnInFlight is returned when a submission arrives while the previous
// turn is still streaming. The in-flight turn is never cancelled.
var ErrTurnInFlight = errors.New("conversation: a turn is already in flight")

// Session is one user's transient conversation.
type Session struct {
	mu           sync.Mutex
	id           string
	messages     []Message
	inFlight     bool
	initialQuery string
	initialDone  bool
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// BeginTurn gates a new submission and appends the user message. It fails
// with ErrTurnInFlight while a previous turn is unresolved, mirroring a
// disabled submit control.
func (s *Session) BeginTurn(input string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return ErrTurnInFlight
	}
	s.inFlight = true
	s.messages = append(s.messages, Message{Role: RoleUser, Content: input})
	return nil
}

// CompleteTurn appends the assistant's answer and releases the gate.
func (s *Session) CompleteTurn(answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, Message{Role: RoleAssistant, Content: answer})
	s.inFlight = false
}

// FailTurn releases the gate without appending an assistant message, so the
// failure reads as a stopped response rather than corrupted state.
func (s *Session) FailTurn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
}

// Loading reports whether a reply is still pending: a turn is in flight and
// the latest message is from the user.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inFlight || len(s.messages) == 0 {
		return false
	}
	return s.messages[len(s.messages)-1].Role == RoleUser
}

// Messages returns a copy of the append-only log.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// TakeInitialQuery hands out the entry query exactly once. Subsequent calls
// report it as already processed regardless of outcome; the auto-submit
// must not re-trigger.
func (s *Session) TakeInitialQuery() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialDone || s.initialQuery == "" {
		return "", false
	}
	s.initialDone = true
	return s.initialQuery, true
}

// Store is the process-local registry of live sessions.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty session registry.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create registers a new session, optionally carrying an entry query to be
// auto-submitted once.
func (st *Store) Create(initialQuery string) *Session {
	session := &Session{
		id:           uuid.NewString(),
		initialQuery: initialQuery,
	}
	st.mu.Lock()
	st.sessions[session.id] = session
	st.mu.Unlock()
	return session
}

// Get looks up a live session.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	session, ok := st.sessions[id]
	return session, ok
}

// Drop forgets a session.
func (st *Store) Drop(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}
