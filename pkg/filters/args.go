package filters

import (
	"strings"
	"unicode"

	"github.com/mymmrac/telego"
)

// GetArgsRaw returns everything after the command word of text, unsplit.
// ok is false when text is empty. A command without arguments yields "".
//
//	GetArgsRaw("/ban  @spammer for a day") // "@spammer for a day", true
func GetArgsRaw(text string) (args string, ok bool) {
	if text == "" {
		return "", false
	}
	text = strings.TrimLeftFunc(text, isSpace)
	i := strings.IndexFunc(text, isSpace)
	if i < 0 {
		return "", true
	}
	return strings.TrimLeftFunc(text[i:], isSpace), true
}

// isSpace is unicode.IsSpace plus the ASCII separators U+001C..U+001F.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// MessageArgs applies GetArgsRaw to the message text, or to the caption of
// a media message.
func MessageArgs(msg *telego.Message) (string, bool) {
	if msg == nil {
		return "", false
	}
	return GetArgsRaw(messageText(msg))
}

func messageText(msg *telego.Message) string {
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Caption
}
