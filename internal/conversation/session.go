package conversation

import (
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/resale-ledger/internal/domain"
)

// State is the position of a session in the data-entry conversation.
type State int

const (
	// StateIdle means no conversation is in progress.
	StateIdle State = iota

	// StateAwaitingActionChoice means the menu was sent and the operator
	// has not yet picked buy or sell.
	StateAwaitingActionChoice

	// StateAwaitingBuyDetails means the 5-field buy prompt was sent.
	StateAwaitingBuyDetails

	// StateAwaitingSellTarget means the numbered unsold list was sent.
	StateAwaitingSellTarget

	// StateAwaitingSellDetails means a product was selected and the
	// 2-field sell prompt was sent.
	StateAwaitingSellDetails
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingActionChoice:
		return "awaiting_action_choice"
	case StateAwaitingBuyDetails:
		return "awaiting_buy_details"
	case StateAwaitingSellTarget:
		return "awaiting_sell_target"
	case StateAwaitingSellDetails:
		return "awaiting_sell_details"
	}
	return "unknown"
}

// Session is the ephemeral per-chat state carried between an operator's
// successive messages. It is never persisted; a process restart drops
// all in-flight conversations.
type Session struct {
	ID     uuid.UUID
	ChatID int64
	UserID int64
	State  State

	// UnsoldSnapshot is the unsold subset of the table at the moment the
	// numbered list was sent, keyed by record Index. It is used only to
	// display and validate the operator's choice; writes always go
	// through a fresh load.
	UnsoldSnapshot map[int]domain.Record

	// SelectedIndex is the Index of the record chosen for a sell entry.
	SelectedIndex int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession creates an idle session for a chat.
func NewSession(chatID, userID int64, now time.Time) *Session {
	return &Session{
		ID:        uuid.New(),
		ChatID:    chatID,
		UserID:    userID,
		State:     StateIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// toIdle returns the session to the terminal state and discards all
// in-flight conversation data.
func (s *Session) toIdle() {
	s.State = StateIdle
	s.UnsoldSnapshot = nil
	s.SelectedIndex = 0
}
