package conversation

import (
	"testing"
	"time"
)

func TestSessionStoreGetOrCreate(t *testing.T) {
	st := NewSessionStore()
	now := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)

	s1 := st.GetOrCreate(1001, 42, now)
	if s1.State != StateIdle {
		t.Errorf("new session state = %v, want idle", s1.State)
	}

	s2 := st.GetOrCreate(1001, 42, now.Add(time.Minute))
	if s1 != s2 {
		t.Error("GetOrCreate created a second session for the same chat")
	}

	other := st.GetOrCreate(2002, 43, now)
	if other == s1 {
		t.Error("distinct chats share a session")
	}
}

func TestSessionStoreDelete(t *testing.T) {
	st := NewSessionStore()
	now := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)

	st.GetOrCreate(1001, 42, now)
	st.Delete(1001)

	if _, ok := st.Get(1001); ok {
		t.Error("session survived Delete")
	}
}
