package filters

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mymmrac/telego"
)

// ErrNoBot is returned by predicates that need the Bot API when the update
// carries no bot client.
var ErrNoBot = errors.New("update has no bot client")

// Update is what a filter inspects: the incoming message plus the client
// that received it.
type Update struct {
	Message *telego.Message

	// Bot is used by predicates that query the Bot API (chat_admin,
	// user_has_bio, me). It may be nil when none of those are evaluated.
	Bot *telego.Bot

	// Executor runs SyncFunc predicates. Nil means DefaultExecutor().
	Executor *Executor

	// Self is the bot account. When nil it is fetched with getMe on first
	// use and kept for the lifetime of the update.
	Self *telego.User

	selfMu sync.Mutex
}

// NewUpdate wraps msg received by bot.
func NewUpdate(bot *telego.Bot, msg *telego.Message) *Update {
	return &Update{Message: msg, Bot: bot}
}

func (u *Update) executor() *Executor {
	if u == nil || u.Executor == nil {
		return DefaultExecutor()
	}
	return u.Executor
}

func (u *Update) message() *telego.Message {
	if u == nil {
		return nil
	}
	return u.Message
}

// sender returns the user who sent the message, or nil when the message was
// sent on behalf of a chat (anonymous admins, linked channels).
func (u *Update) sender() *telego.User {
	msg := u.message()
	if msg == nil || msg.SenderChat != nil {
		return nil
	}
	return msg.From
}

// self is safe to call from concurrent filter checks on the same update;
// at most one getMe is in flight.
func (u *Update) self(ctx context.Context) (*telego.User, error) {
	u.selfMu.Lock()
	defer u.selfMu.Unlock()
	if u.Self != nil {
		return u.Self, nil
	}
	if u.Bot == nil {
		return nil, ErrNoBot
	}
	me, err := u.Bot.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("getMe: %w", err)
	}
	u.Self = me
	return me, nil
}
