package conversation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/resale-ledger/internal/dates"
	"github.com/dvloznov/resale-ledger/internal/domain"
	"github.com/dvloznov/resale-ledger/internal/ledger"
)

// Menu choices. Action-choice replies are matched by prefix so that
// quick-reply buttons and hand-typed text both work.
const (
	ChoiceBuy  = "Add Buy Entry"
	ChoiceSell = "Add Sell Entry"
)

var (
	// ErrInvalidEntryFormat is returned when a reply has the wrong number
	// of comma-separated fields.
	ErrInvalidEntryFormat = errors.New("invalid entry format")

	// ErrInvalidSelection is returned when a sell-target reply does not
	// match a number from the unsold list.
	ErrInvalidSelection = errors.New("invalid product number")
)

// Reply is one outbound message. Options, when set, are offered as
// single-use quick replies.
type Reply struct {
	Text    string
	Options []string
}

// Machine drives the data-entry conversation. Each inbound message runs
// exactly one step to completion, including any full load-transform-save
// cycle against the ledger, before the chat's next message is accepted.
//
// Every error ends the conversation and returns the session to idle;
// the single exception is an unrecognized menu choice, which re-prompts
// the menu. The numbers shown in the unsold list are the records' stored
// Index values, and the operator's selection resolves against the same
// numbering.
type Machine struct {
	ledger *ledger.Ledger
	now    func() time.Time
	log    zerolog.Logger
}

// NewMachine creates a machine over the given ledger.
func NewMachine(l *ledger.Ledger, log zerolog.Logger) *Machine {
	return &Machine{
		ledger: l,
		now:    time.Now,
		log:    log,
	}
}

// Start begins a conversation: the session moves to the action-choice
// state and the two-item menu is sent. The ledger is not touched.
func (m *Machine) Start(s *Session) Reply {
	s.toIdle()
	s.State = StateAwaitingActionChoice
	s.UpdatedAt = m.now()

	return Reply{
		Text:    "What would you like to do?",
		Options: []string{ChoiceBuy, ChoiceSell},
	}
}

// Cancel aborts the conversation from any state, discarding in-flight
// session data without touching the ledger.
func (m *Machine) Cancel(s *Session) Reply {
	s.toIdle()
	s.UpdatedAt = m.now()

	return Reply{Text: "Cancelled."}
}

// Step runs the handler for the session's current state against one
// inbound message and returns the reply to send. The session is mutated
// in place; after a terminal step its state is StateIdle.
func (m *Machine) Step(ctx context.Context, s *Session, text string) Reply {
	s.UpdatedAt = m.now()

	var reply Reply
	switch s.State {
	case StateAwaitingActionChoice:
		reply = m.handleActionChoice(ctx, s, text)
	case StateAwaitingBuyDetails:
		reply = m.handleBuyDetails(ctx, s, text)
	case StateAwaitingSellTarget:
		reply = m.handleSellTarget(s, text)
	case StateAwaitingSellDetails:
		reply = m.handleSellDetails(ctx, s, text)
	default:
		reply = Reply{Text: "No conversation in progress. Send /start to begin."}
	}

	m.log.Debug().
		Str("session_id", s.ID.String()).
		Int64("chat_id", s.ChatID).
		Str("state", s.State.String()).
		Msg("conversation step")

	return reply
}

func (m *Machine) handleActionChoice(ctx context.Context, s *Session, text string) Reply {
	trimmed := strings.TrimSpace(text)

	switch {
	case hasFold(trimmed, ChoiceBuy):
		s.State = StateAwaitingBuyDetails
		return Reply{Text: "Provide the details (format: Serial Number, Model, Storage, Purchase Price, Purchase Date):"}

	case hasFold(trimmed, ChoiceSell):
		table, err := m.ledger.Load(ctx)
		if err != nil {
			return m.fail(s, err)
		}

		unsold := table.Unsold()
		if len(unsold) == 0 {
			s.toIdle()
			return Reply{Text: "No unsold products found."}
		}

		s.UnsoldSnapshot = make(map[int]domain.Record, len(unsold))
		var b strings.Builder
		b.WriteString("Which product was sold? Reply with its number:\n")
		for _, rec := range unsold {
			s.UnsoldSnapshot[rec.Index] = rec
			fmt.Fprintf(&b, "%d. %s %s %s (bought %s on %s)\n",
				rec.Index, rec.SerialNumber, rec.Model, rec.Storage, rec.PurchasePrice, rec.PurchaseDate)
		}
		s.State = StateAwaitingSellTarget
		return Reply{Text: b.String()}

	default:
		// The one non-terminal error: re-prompt the menu.
		return Reply{
			Text:    "Please pick one of the menu options.",
			Options: []string{ChoiceBuy, ChoiceSell},
		}
	}
}

func (m *Machine) handleBuyDetails(ctx context.Context, s *Session, text string) Reply {
	fields := splitFields(text)
	if len(fields) != 5 {
		return m.fail(s, fmt.Errorf("%w: provide 5 values separated by commas, got %d", ErrInvalidEntryFormat, len(fields)))
	}

	price, err := domain.ParsePrice(fields[3])
	if err != nil {
		return m.fail(s, err)
	}
	date, err := dates.Normalize(fields[4], m.now())
	if err != nil {
		return m.fail(s, err)
	}

	table, err := m.ledger.Load(ctx)
	if err != nil {
		return m.fail(s, err)
	}

	entry := domain.Record{
		SerialNumber:  fields[0],
		Model:         fields[1],
		Storage:       fields[2],
		PurchasePrice: price,
		PurchaseDate:  date,
	}
	updated := ledger.Append(table, entry)

	if err := m.ledger.Save(ctx, updated); err != nil {
		return m.fail(s, err)
	}

	added := updated[len(updated)-1]
	m.log.Info().
		Str("session_id", s.ID.String()).
		Int("index", added.Index).
		Str("serial_number", added.SerialNumber).
		Msg("buy entry added")

	s.toIdle()
	return Reply{Text: fmt.Sprintf(
		"Buy entry added successfully! Here are the details:\n\n"+
			"Serial Number: %s\nModel: %s\nStorage: %s\nPurchase Price: %s\nPurchase Date: %s",
		added.SerialNumber, added.Model, added.Storage, added.PurchasePrice, added.PurchaseDate)}
}

func (m *Machine) handleSellTarget(s *Session, text string) Reply {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return m.fail(s, fmt.Errorf("%w: %q", ErrInvalidSelection, strings.TrimSpace(text)))
	}
	if _, ok := s.UnsoldSnapshot[n]; !ok {
		return m.fail(s, fmt.Errorf("%w: %d", ErrInvalidSelection, n))
	}

	s.SelectedIndex = n
	s.State = StateAwaitingSellDetails
	return Reply{Text: "Provide the Sell Date and Sell Price (format: Date, Price):"}
}

func (m *Machine) handleSellDetails(ctx context.Context, s *Session, text string) Reply {
	fields := splitFields(text)
	if len(fields) != 2 {
		return m.fail(s, fmt.Errorf("%w: provide 2 values separated by a comma, got %d", ErrInvalidEntryFormat, len(fields)))
	}

	date, err := dates.Normalize(fields[0], m.now())
	if err != nil {
		return m.fail(s, err)
	}
	price, err := domain.ParsePrice(fields[1])
	if err != nil {
		return m.fail(s, err)
	}

	// Always a fresh load; the snapshot may predate appends from other
	// chats and must never be the basis for a write.
	table, err := m.ledger.Load(ctx)
	if err != nil {
		return m.fail(s, err)
	}

	updated, err := ledger.UpdateAt(table, s.SelectedIndex, domain.SellPatch{SellDate: date, SellPrice: price})
	if err != nil {
		return m.fail(s, err)
	}

	if err := m.ledger.Save(ctx, updated); err != nil {
		return m.fail(s, err)
	}

	rec, _ := updated.At(s.SelectedIndex)
	m.log.Info().
		Str("session_id", s.ID.String()).
		Int("index", rec.Index).
		Str("serial_number", rec.SerialNumber).
		Msg("sell entry recorded")

	s.toIdle()
	return Reply{Text: fmt.Sprintf(
		"Sell entry updated successfully! Here are the details:\n\n"+
			"Serial Number: %s\nModel: %s\nStorage: %s\nPurchase Price: %s\nPurchase Date: %s\nSell Price: %s\nSell Date: %s",
		rec.SerialNumber, rec.Model, rec.Storage, rec.PurchasePrice, rec.PurchaseDate, rec.SellPrice, rec.SellDate)}
}

// fail ends the conversation with a plain-text error reply. No error is
// retried; a step either fully completes or aborts with no mutation.
func (m *Machine) fail(s *Session, err error) Reply {
	m.log.Warn().
		Str("session_id", s.ID.String()).
		Int64("chat_id", s.ChatID).
		Str("state", s.State.String()).
		Err(err).
		Msg("conversation ended with error")

	s.toIdle()
	return Reply{Text: "Error: " + userMessage(err)}
}

// userMessage translates internal errors into operator-facing text.
func userMessage(err error) string {
	switch {
	case errors.Is(err, ledger.ErrStoreUnavailable):
		return "the ledger file store is unavailable, please try again later."
	case errors.Is(err, ledger.ErrCorruptFile):
		return "the ledger file could not be read."
	case errors.Is(err, ledger.ErrIndexNotFound):
		return "that product no longer exists in the ledger."
	default:
		return err.Error()
	}
}

func splitFields(text string) []string {
	parts := strings.Split(text, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func hasFold(text, prefix string) bool {
	return len(text) >= len(prefix) && strings.EqualFold(text[:len(prefix)], prefix)
}
