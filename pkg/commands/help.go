package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/sipeed/tgfilters/pkg/filters"
	"github.com/sipeed/tgfilters/pkg/logger"
)

// Visible returns the definitions whose filter passes for u. A filter that
// fails with an error hides its command.
func Visible(ctx context.Context, defs []Definition, u *filters.Update) []Definition {
	out := make([]Definition, 0, len(defs))
	for _, def := range defs {
		if def.Filter != nil {
			ok, err := def.Filter.Check(ctx, u)
			if err != nil {
				logger.DebugCF("commands", "Hiding command after filter error", map[string]any{
					"command": def.Name,
					"error":   err.Error(),
				})
				continue
			}
			if !ok {
				continue
			}
		}
		out = append(out, def)
	}
	return out
}

// HelpDefinition is a /help command listing the commands the asking user may
// run in the current chat.
func HelpDefinition(reg *Registry) Definition {
	return Definition{
		Name:        "help",
		Description: "Show this help message",
		Usage:       "/help",
		Handler: func(ctx context.Context, req Request) error {
			if req.Reply == nil {
				return nil
			}
			defs := Visible(ctx, reg.ForChannel(req.Channel), req.Update)
			return req.Reply(FormatHelpMessage(defs))
		},
	}
}

func FormatHelpMessage(defs []Definition) string {
	if len(defs) == 0 {
		return "No commands available."
	}

	lines := make([]string, 0, len(defs))
	for _, def := range defs {
		usage := def.Usage
		if usage == "" {
			usage = "/" + def.Name
		}
		desc := def.Description
		if desc == "" {
			desc = "No description"
		}
		lines = append(lines, fmt.Sprintf("%s - %s", usage, desc))
	}
	return strings.Join(lines, "\n")
}
