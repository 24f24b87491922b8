package filters

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/sipeed/tgfilters/pkg/logger"
)

// messageFilter builds a named inline predicate over the message alone.
// A nil update or message never passes.
func messageFilter(name string, fn func(msg *telego.Message) bool) Filter {
	return New(name, Func(func(_ context.Context, u *Update) (bool, error) {
		msg := u.message()
		if msg == nil {
			return false, nil
		}
		return fn(msg), nil
	}))
}

// senderFilter builds a named inline predicate over the sending user.
// Messages sent on behalf of a chat never pass.
func senderFilter(name string, fn func(user *telego.User) bool) Filter {
	return New(name, Func(func(_ context.Context, u *Update) (bool, error) {
		user := u.sender()
		if user == nil {
			return false, nil
		}
		return fn(user), nil
	}))
}

// ChatAdmin passes for group messages whose sender is the chat creator or an
// administrator.
var ChatAdmin = New("chat_admin", Func(func(ctx context.Context, u *Update) (bool, error) {
	msg := u.message()
	user := u.sender()
	if msg == nil || user == nil || !isGroup(msg.Chat) {
		return false, nil
	}
	if u.Bot == nil {
		return false, ErrNoBot
	}
	member, err := u.Bot.GetChatMember(ctx, &telego.GetChatMemberParams{
		ChatID: tu.ID(msg.Chat.ID),
		UserID: user.ID,
	})
	if err != nil {
		logger.DebugCF("filters", "getChatMember failed", map[string]any{
			"chat_id": msg.Chat.ID,
			"user_id": user.ID,
			"error":   err.Error(),
		})
		return false, fmt.Errorf("getChatMember: %w", err)
	}
	switch member.MemberStatus() {
	case "creator", "administrator":
		return true, nil
	default:
		return false, nil
	}
}))

// PremiumUser passes when the sender has Telegram Premium.
var PremiumUser = senderFilter("premium_user", func(user *telego.User) bool {
	return user.IsPremium
})

// UserHasUsername passes when the sender has a public username.
var UserHasUsername = senderFilter("user_has_username", func(user *telego.User) bool {
	return user.Username != ""
})

// SenderBot passes when the sender is a bot.
var SenderBot = senderFilter("sender_bot", func(user *telego.User) bool {
	return user.IsBot
})

// UserHasBio passes when the sender's profile has a bio.
var UserHasBio = New("user_has_bio", Func(func(ctx context.Context, u *Update) (bool, error) {
	user := u.sender()
	if user == nil {
		return false, nil
	}
	if u.Bot == nil {
		return false, ErrNoBot
	}
	info, err := u.Bot.GetChat(ctx, &telego.GetChatParams{ChatID: tu.ID(user.ID)})
	if err != nil {
		logger.DebugCF("filters", "getChat failed", map[string]any{
			"user_id": user.ID,
			"error":   err.Error(),
		})
		return false, fmt.Errorf("getChat: %w", err)
	}
	return info != nil && info.Bio != "", nil
}))

// Me passes for messages sent by the bot account itself.
var Me = New("me", Func(func(ctx context.Context, u *Update) (bool, error) {
	user := u.sender()
	if user == nil {
		return false, nil
	}
	self, err := u.self(ctx)
	if err != nil {
		return false, err
	}
	return user.ID == self.ID, nil
}))

// Reply passes for messages that reply to another message.
var Reply = messageFilter("reply", func(msg *telego.Message) bool {
	return msg.ReplyToMessage != nil
})

// GroupChat passes for messages in groups and supergroups.
var GroupChat = messageFilter("group_chat", func(msg *telego.Message) bool {
	return isGroup(msg.Chat)
})

// Channel passes for channel posts.
var Channel = messageFilter("channel", func(msg *telego.Message) bool {
	return msg.Chat.Type == telego.ChatTypeChannel
})

// Args passes when the command in the message has arguments.
var Args = messageFilter("args", func(msg *telego.Message) bool {
	args, _ := MessageArgs(msg)
	return args != ""
})

// ViaBot passes for messages sent through an inline bot.
var ViaBot = messageFilter("via_bot", func(msg *telego.Message) bool {
	return msg.ViaBot != nil
})

// Media passes for messages carrying any kind of media: audio, document,
// photo, sticker, video, voice, video note, animation, dice, poll, contact,
// location or venue.
var Media = messageFilter("media", func(msg *telego.Message) bool {
	return msg.Audio != nil ||
		msg.Document != nil ||
		len(msg.Photo) > 0 ||
		msg.Sticker != nil ||
		msg.Video != nil ||
		msg.Voice != nil ||
		msg.VideoNote != nil ||
		msg.Animation != nil ||
		msg.Dice != nil ||
		msg.Poll != nil ||
		msg.Contact != nil ||
		msg.Location != nil ||
		msg.Venue != nil
})

func isGroup(chat telego.Chat) bool {
	return chat.Type == telego.ChatTypeGroup || chat.Type == telego.ChatTypeSupergroup
}

// refSet holds ids and lowercased usernames parsed from mixed references.
type refSet struct {
	ids       map[int64]struct{}
	usernames map[string]struct{}
}

func parseRefs(refs []string) refSet {
	set := refSet{
		ids:       make(map[int64]struct{}),
		usernames: make(map[string]struct{}),
	}
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
			set.ids[id] = struct{}{}
			continue
		}
		set.usernames[strings.ToLower(strings.TrimPrefix(ref, "@"))] = struct{}{}
	}
	return set
}

func (s refSet) match(id int64, username string) bool {
	if _, ok := s.ids[id]; ok {
		return true
	}
	if username == "" {
		return false
	}
	_, ok := s.usernames[strings.ToLower(username)]
	return ok
}

func formatIDs(ids []int64) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, strconv.FormatInt(id, 10))
	}
	return out
}

// User passes when the sender's id or username is one of refs. Numeric refs
// are ids; anything else is a username, with or without the leading "@".
func User(refs ...string) Filter {
	set := parseRefs(refs)
	return senderFilter(fmt.Sprintf("user%v", refs), func(user *telego.User) bool {
		return set.match(user.ID, user.Username)
	})
}

// UserIDs is User for numeric ids.
func UserIDs(ids ...int64) Filter {
	return User(formatIDs(ids)...)
}

// Chat passes when the chat id or chat username is one of refs. Refs follow
// the same rules as User.
func Chat(refs ...string) Filter {
	set := parseRefs(refs)
	return messageFilter(fmt.Sprintf("chat%v", refs), func(msg *telego.Message) bool {
		return set.match(msg.Chat.ID, msg.Chat.Username)
	})
}

// ChatIDs is Chat for numeric ids.
func ChatIDs(ids ...int64) Filter {
	return Chat(formatIDs(ids)...)
}

// Text passes when the message text equals text. With checkCaption a media
// caption equal to text passes as well.
func Text(text string, checkCaption bool) Filter {
	return messageFilter(fmt.Sprintf("text(%q)", text), func(msg *telego.Message) bool {
		if msg.Text != "" && msg.Text == text {
			return true
		}
		return checkCaption && msg.Caption != "" && msg.Caption == text
	})
}
