package filters

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownFilter is returned by Lookup for names that are not built in.
var ErrUnknownFilter = errors.New("unknown filter")

var builtins = map[string]Filter{
	"chat_admin":        ChatAdmin,
	"premium_user":      PremiumUser,
	"user_has_username": UserHasUsername,
	"sender_bot":        SenderBot,
	"user_has_bio":      UserHasBio,
	"me":                Me,
	"reply":             Reply,
	"group_chat":        GroupChat,
	"channel":           Channel,
	"args":              Args,
	"via_bot":           ViaBot,
	"media":             Media,
}

// Lookup returns the built-in filter called name. A leading "!" negates it.
func Lookup(name string) (Filter, error) {
	name = strings.TrimSpace(name)
	if rest, ok := strings.CutPrefix(name, "!"); ok {
		f, err := Lookup(rest)
		if err != nil {
			return nil, err
		}
		return Not(f), nil
	}
	f, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
	}
	return f, nil
}

// Names lists the built-in filter names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All resolves names with Lookup and requires every one of them to pass.
// No names yields nil.
func All(names ...string) (Filter, error) {
	resolved := make([]Filter, 0, len(names))
	for _, name := range names {
		f, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, f)
	}
	switch len(resolved) {
	case 0:
		return nil, nil
	case 1:
		return resolved[0], nil
	default:
		return And(resolved[0], resolved[1], resolved[2:]...), nil
	}
}
