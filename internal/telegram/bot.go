package telegram

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/dvloznov/resale-ledger/internal/conversation"
)

const (
	startCommand  = "start"
	cancelCommand = "cancel"

	deniedText = "You are not authorized to use this bot."
	busyText   = "Still working through your previous messages, please resend this one in a moment."
)

// Bot binds the conversation machine to the Telegram transport. Each
// chat's messages are processed one at a time in arrival order; distinct
// chats run concurrently.
type Bot struct {
	api      *tgbotapi.BotAPI
	machine  *conversation.Machine
	sessions *conversation.SessionStore
	guard    *conversation.Guard
	log      zerolog.Logger

	// sendReply delivers one outbound message. Defaults to the API-backed
	// send; swapped out in tests.
	sendReply func(chatID int64, reply conversation.Reply)

	mu    sync.Mutex
	chats map[int64]chan *tgbotapi.Message
	wg    sync.WaitGroup
}

// New connects to the Telegram API and wires the conversation core.
func New(token string, machine *conversation.Machine, sessions *conversation.SessionStore, guard *conversation.Guard, log zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("New: connect bot API: %w", err)
	}

	log.Info().Str("username", api.Self.UserName).Msg("authorized on Telegram")

	b := &Bot{
		api:      api,
		machine:  machine,
		sessions: sessions,
		guard:    guard,
		log:      log,
		chats:    make(map[int64]chan *tgbotapi.Message),
	}
	b.sendReply = b.send
	return b, nil
}

// Run long-polls for updates until ctx is cancelled, then drains the
// per-chat workers.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.closeChats()
			b.wg.Wait()
			return ctx.Err()

		case update, ok := <-updates:
			if !ok {
				b.closeChats()
				b.wg.Wait()
				return nil
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			b.dispatch(ctx, update.Message)
		}
	}
}

// dispatch hands the message to its chat's worker, starting one on first
// contact. The per-chat channel keeps messages ordered and serialized,
// so a step's full load-validate-save cycle finishes before the chat's
// next message runs. When the chat's queue is full the operator is told
// to resend instead of the message vanishing mid-conversation.
func (b *Bot) dispatch(ctx context.Context, msg *tgbotapi.Message) {
	b.mu.Lock()
	ch, ok := b.chats[msg.Chat.ID]
	if !ok {
		ch = make(chan *tgbotapi.Message, 16)
		b.chats[msg.Chat.ID] = ch
		b.wg.Add(1)
		go b.chatWorker(ctx, ch)
	}
	b.mu.Unlock()

	if !enqueue(ch, msg) {
		b.log.Warn().Int64("chat_id", msg.Chat.ID).Msg("chat queue full")
		b.sendReply(msg.Chat.ID, conversation.Reply{Text: busyText})
	}
}

func enqueue(ch chan<- *tgbotapi.Message, msg *tgbotapi.Message) bool {
	select {
	case ch <- msg:
		return true
	default:
		return false
	}
}

func (b *Bot) chatWorker(ctx context.Context, ch <-chan *tgbotapi.Message) {
	defer b.wg.Done()
	for msg := range ch {
		b.handleMessage(ctx, msg)
	}
}

func (b *Bot) closeChats() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.chats {
		close(ch)
		delete(b.chats, id)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	var command string
	if msg.IsCommand() {
		command = msg.Command()
	}
	reply := b.process(ctx, msg.Chat.ID, msg.From.ID, command, msg.Text, msg.Time())
	b.sendReply(msg.Chat.ID, reply)
}

// process runs the guard, session lifecycle, and machine step for one
// inbound message and returns the reply to send. command is empty for
// plain text messages.
func (b *Bot) process(ctx context.Context, chatID, userID int64, command, text string, at time.Time) conversation.Reply {
	// Guard runs before any state handler; a denied user never reaches
	// the ledger.
	if !b.guard.Check(userID) {
		b.log.Warn().Int64("chat_id", chatID).Int64("user_id", userID).Msg("access denied")
		b.sessions.Delete(chatID)
		return conversation.Reply{Text: deniedText}
	}

	session := b.sessions.GetOrCreate(chatID, userID, at)

	var reply conversation.Reply
	switch command {
	case startCommand:
		reply = b.machine.Start(session)
	case cancelCommand:
		reply = b.machine.Cancel(session)
	case "":
		reply = b.machine.Step(ctx, session, text)
	default:
		reply = conversation.Reply{Text: "Unknown command. Use /start or /cancel."}
	}

	// Sessions live only for the duration of one conversation.
	if session.State == conversation.StateIdle {
		b.sessions.Delete(chatID)
	}

	return reply
}

func (b *Bot) send(chatID int64, reply conversation.Reply) {
	out := tgbotapi.NewMessage(chatID, reply.Text)

	if len(reply.Options) > 0 {
		rows := make([][]tgbotapi.KeyboardButton, 0, len(reply.Options))
		for _, opt := range reply.Options {
			rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(opt)))
		}
		out.ReplyMarkup = tgbotapi.NewOneTimeReplyKeyboard(rows...)
	} else {
		out.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	}

	if _, err := b.api.Send(out); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send reply")
	}
}
