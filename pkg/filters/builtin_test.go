package filters

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/mymmrac/telego"
	ta "github.com/mymmrac/telego/telegoapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCaller answers the Bot API methods the predicates use.
type fakeCaller struct {
	mu     sync.Mutex
	status string
	bio    string
	err    error
	calls  map[string]int
}

func (c *fakeCaller) Call(_ context.Context, url string, _ *ta.RequestData) (*ta.Response, error) {
	method := url[strings.LastIndex(url, "/")+1:]

	c.mu.Lock()
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[method]++
	c.mu.Unlock()

	switch method {
	case "getMe":
		return &ta.Response{Ok: true, Result: []byte(`{"id":1,"is_bot":true,"first_name":"bot","username":"testbot"}`)}, nil
	case "getChatMember":
		if c.err != nil {
			return nil, c.err
		}
		result := fmt.Sprintf(`{"status":%q,"user":{"id":7,"is_bot":false,"first_name":"Alice"}}`, c.status)
		return &ta.Response{Ok: true, Result: []byte(result)}, nil
	case "getChat":
		if c.err != nil {
			return nil, c.err
		}
		result := fmt.Sprintf(`{"id":7,"type":"private","first_name":"Alice","bio":%q,"accent_color_id":0,"max_reaction_count":0}`, c.bio)
		return &ta.Response{Ok: true, Result: []byte(result)}, nil
	}
	return &ta.Response{Ok: true, Result: []byte("true")}, nil
}

func (c *fakeCaller) count(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

func newTestBot(t *testing.T, caller ta.Caller) *telego.Bot {
	t.Helper()

	token := "123456:" + strings.Repeat("a", 35)
	bot, err := telego.NewBot(token,
		telego.WithAPICaller(caller),
		telego.WithDiscardLogger(),
	)
	require.NoError(t, err)
	return bot
}

func alice() *telego.User {
	return &telego.User{ID: 7, FirstName: "Alice", Username: "Alice_W"}
}

func groupMessage(from *telego.User) *telego.Message {
	return &telego.Message{
		MessageID: 10,
		Text:      "hello",
		From:      from,
		Chat:      telego.Chat{ID: -1001234, Type: telego.ChatTypeSupergroup, Username: "gophers"},
	}
}

func check(t *testing.T, f Filter, u *Update) bool {
	t.Helper()
	ok, err := f.Check(context.Background(), u)
	require.NoError(t, err)
	return ok
}

func TestMessageFilters(t *testing.T) {
	premium := alice()
	premium.IsPremium = true
	bot := &telego.User{ID: 99, IsBot: true, FirstName: "helper"}
	anonymous := groupMessage(&telego.User{ID: 1087968824, IsBot: true, Username: "GroupAnonymousBot", IsPremium: true})
	anonymous.SenderChat = &telego.Chat{ID: -1001234, Type: telego.ChatTypeSupergroup}

	tests := []struct {
		name   string
		filter Filter
		msg    *telego.Message
		want   bool
	}{
		{"premium sender", PremiumUser, groupMessage(premium), true},
		{"regular sender", PremiumUser, groupMessage(alice()), false},
		{"premium flag on anonymous admin", PremiumUser, anonymous, false},
		{"no sender", PremiumUser, &telego.Message{Chat: telego.Chat{Type: telego.ChatTypeChannel}}, false},

		{"has username", UserHasUsername, groupMessage(alice()), true},
		{"no username", UserHasUsername, groupMessage(&telego.User{ID: 8}), false},

		{"bot sender", SenderBot, groupMessage(bot), true},
		{"human sender", SenderBot, groupMessage(alice()), false},
		{"anonymous admin is not a bot sender", SenderBot, anonymous, false},

		{"reply", Reply, &telego.Message{ReplyToMessage: &telego.Message{MessageID: 1}}, true},
		{"not a reply", Reply, groupMessage(alice()), false},

		{"supergroup", GroupChat, groupMessage(alice()), true},
		{"basic group", GroupChat, &telego.Message{Chat: telego.Chat{Type: telego.ChatTypeGroup}}, true},
		{"private chat", GroupChat, &telego.Message{Chat: telego.Chat{Type: telego.ChatTypePrivate}}, false},
		{"channel is not a group", GroupChat, &telego.Message{Chat: telego.Chat{Type: telego.ChatTypeChannel}}, false},

		{"channel post", Channel, &telego.Message{Chat: telego.Chat{Type: telego.ChatTypeChannel}}, true},
		{"group is not a channel", Channel, groupMessage(alice()), false},

		{"command with args", Args, &telego.Message{Text: "/ban @spammer"}, true},
		{"command without args", Args, &telego.Message{Text: "/ban"}, false},
		{"caption args", Args, &telego.Message{Caption: "/save this photo"}, true},
		{"empty message", Args, &telego.Message{}, false},

		{"via inline bot", ViaBot, &telego.Message{ViaBot: bot}, true},
		{"direct message", ViaBot, groupMessage(alice()), false},

		{"photo", Media, &telego.Message{Photo: []telego.PhotoSize{{FileID: "p"}}}, true},
		{"document", Media, &telego.Message{Document: &telego.Document{FileID: "d"}}, true},
		{"sticker", Media, &telego.Message{Sticker: &telego.Sticker{FileID: "s"}}, true},
		{"voice", Media, &telego.Message{Voice: &telego.Voice{FileID: "v"}}, true},
		{"video note", Media, &telego.Message{VideoNote: &telego.VideoNote{FileID: "n"}}, true},
		{"dice", Media, &telego.Message{Dice: &telego.Dice{Emoji: "🎲", Value: 4}}, true},
		{"poll", Media, &telego.Message{Poll: &telego.Poll{ID: "q"}}, true},
		{"audio", Media, &telego.Message{Audio: &telego.Audio{FileID: "a"}}, true},
		{"video", Media, &telego.Message{Video: &telego.Video{FileID: "m"}}, true},
		{"animation", Media, &telego.Message{Animation: &telego.Animation{FileID: "g"}}, true},
		{"contact", Media, &telego.Message{Contact: &telego.Contact{PhoneNumber: "+100", FirstName: "Bob"}}, true},
		{"location", Media, &telego.Message{Location: &telego.Location{Latitude: 52.5, Longitude: 13.4}}, true},
		{"venue", Media, &telego.Message{Venue: &telego.Venue{Title: "Cafe", Address: "Main St"}}, true},
		{"plain text", Media, groupMessage(alice()), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, check(t, tt.filter, &Update{Message: tt.msg}))
		})
	}
}

func TestBuiltins_NilUpdate(t *testing.T) {
	for _, name := range Names() {
		f, err := Lookup(name)
		require.NoError(t, err)

		ok, err := f.Check(context.Background(), nil)
		require.NoError(t, err, name)
		assert.False(t, ok, name)

		ok, err = f.Check(context.Background(), &Update{})
		require.NoError(t, err, name)
		assert.False(t, ok, name)
	}
}

func TestUser(t *testing.T) {
	tests := []struct {
		name string
		refs []string
		want bool
	}{
		{"by id", []string{"7"}, true},
		{"by username", []string{"Alice_W"}, true},
		{"by username with at sign", []string{"@alice_w"}, true},
		{"one of many", []string{"1", "2", "@alice_w"}, true},
		{"no match", []string{"8", "bob"}, false},
		{"empty list", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, check(t, User(tt.refs...), &Update{Message: groupMessage(alice())}))
		})
	}

	assert.True(t, check(t, UserIDs(3, 7), &Update{Message: groupMessage(alice())}))
	assert.False(t, check(t, UserIDs(3), &Update{Message: groupMessage(alice())}))
}

func TestChat(t *testing.T) {
	u := &Update{Message: groupMessage(alice())}

	assert.True(t, check(t, Chat("-1001234"), u))
	assert.True(t, check(t, Chat("@Gophers"), u))
	assert.True(t, check(t, ChatIDs(-1001234), u))
	assert.False(t, check(t, Chat("rustaceans", "42"), u))

	private := &Update{Message: &telego.Message{Chat: telego.Chat{ID: 7, Type: telego.ChatTypePrivate}}}
	assert.True(t, check(t, ChatIDs(7), private))
}

func TestText(t *testing.T) {
	withCaption := &Update{Message: &telego.Message{Caption: "hello"}}
	withText := &Update{Message: &telego.Message{Text: "hello"}}

	assert.True(t, check(t, Text("hello", true), withText))
	assert.True(t, check(t, Text("hello", false), withText))
	assert.True(t, check(t, Text("hello", true), withCaption))
	assert.False(t, check(t, Text("hello", false), withCaption))
	assert.False(t, check(t, Text("bye", true), withText))
	assert.False(t, check(t, Text("", true), &Update{Message: &telego.Message{}}))
}

func TestChatAdmin(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{"creator", true},
		{"administrator", true},
		{"member", false},
		{"restricted", false},
		{"left", false},
		{"kicked", false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			caller := &fakeCaller{status: tt.status}
			u := NewUpdate(newTestBot(t, caller), groupMessage(alice()))

			assert.Equal(t, tt.want, check(t, ChatAdmin, u))
			assert.Equal(t, 1, caller.count("getChatMember"))
		})
	}
}

func TestChatAdmin_SkipsAPIOutsideGroups(t *testing.T) {
	caller := &fakeCaller{status: "creator"}
	bot := newTestBot(t, caller)

	private := &telego.Message{From: alice(), Chat: telego.Chat{ID: 7, Type: telego.ChatTypePrivate}}
	assert.False(t, check(t, ChatAdmin, NewUpdate(bot, private)))

	anonymous := groupMessage(alice())
	anonymous.SenderChat = &telego.Chat{ID: -1001234, Type: telego.ChatTypeSupergroup}
	assert.False(t, check(t, ChatAdmin, NewUpdate(bot, anonymous)))

	assert.Zero(t, caller.count("getChatMember"))
}

func TestChatAdmin_Errors(t *testing.T) {
	_, err := ChatAdmin.Check(context.Background(), &Update{Message: groupMessage(alice())})
	require.ErrorIs(t, err, ErrNoBot)

	boom := errors.New("network down")
	caller := &fakeCaller{err: boom}
	ok, err := ChatAdmin.Check(context.Background(), NewUpdate(newTestBot(t, caller), groupMessage(alice())))
	assert.False(t, ok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "getChatMember")
}

func TestUserHasBio(t *testing.T) {
	withBio := &fakeCaller{bio: "gopher since 2012"}
	assert.True(t, check(t, UserHasBio, NewUpdate(newTestBot(t, withBio), groupMessage(alice()))))
	assert.Equal(t, 1, withBio.count("getChat"))

	noBio := &fakeCaller{}
	assert.False(t, check(t, UserHasBio, NewUpdate(newTestBot(t, noBio), groupMessage(alice()))))

	_, err := UserHasBio.Check(context.Background(), &Update{Message: groupMessage(alice())})
	require.ErrorIs(t, err, ErrNoBot)
}

func TestMe(t *testing.T) {
	caller := &fakeCaller{}
	bot := newTestBot(t, caller)

	own := NewUpdate(bot, groupMessage(&telego.User{ID: 1, IsBot: true, FirstName: "bot"}))
	assert.True(t, check(t, Me, own))
	require.NotNil(t, own.Self)
	assert.Equal(t, int64(1), own.Self.ID)

	other := NewUpdate(bot, groupMessage(alice()))
	assert.False(t, check(t, Me, other))

	preset := &Update{Message: groupMessage(alice()), Self: alice()}
	assert.True(t, check(t, Me, preset), "a preset Self needs no bot client")

	_, err := Me.Check(context.Background(), &Update{Message: groupMessage(alice())})
	require.ErrorIs(t, err, ErrNoBot)
}

func TestMe_ConcurrentChecksShareOneLookup(t *testing.T) {
	caller := &fakeCaller{}
	u := NewUpdate(newTestBot(t, caller), groupMessage(&telego.User{ID: 1, IsBot: true, FirstName: "bot"}))

	var wg sync.WaitGroup
	results := make([]bool, 4)
	errs := make([]error, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = Me.Check(context.Background(), u)
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.True(t, results[i])
	}
	assert.Equal(t, 1, caller.count("getMe"))
	require.NotNil(t, u.Self)
}
