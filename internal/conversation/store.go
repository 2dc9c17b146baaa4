package conversation

import (
	"sync"
	"time"
)

// SessionStore holds live sessions keyed by chat id. It is safe for
// concurrent use across chats; within one chat the transport delivers
// messages one at a time, so handing out the stored pointer is safe.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]*Session),
	}
}

// Get returns the session for a chat, if one exists.
func (st *SessionStore) Get(chatID int64) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[chatID]
	return s, ok
}

// GetOrCreate returns the chat's session, creating an idle one on first
// contact.
func (st *SessionStore) GetOrCreate(chatID, userID int64, now time.Time) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[chatID]; ok {
		return s
	}
	s := NewSession(chatID, userID, now)
	st.sessions[chatID] = s
	return s
}

// Delete evicts the chat's session. Called when a conversation reaches
// a terminal state or is cancelled.
func (st *SessionStore) Delete(chatID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()

	delete(st.sessions, chatID)
}
