package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/sipeed/tgfilters/pkg/filters"
)

type Handler func(ctx context.Context, req Request) error

type Request struct {
	Channel   string
	ChatID    string
	SenderID  string
	Text      string
	MessageID string
	// Update is what definition filters are evaluated against.
	Update *filters.Update
	Reply  func(text string) error
}

type Result struct {
	Matched  bool
	Handled  bool
	Filtered bool
	Command  string
	Err      error
}

type Dispatcher struct {
	reg *Registry
}

type Dispatching interface {
	Dispatch(ctx context.Context, req Request) Result
}

type DispatchFunc func(ctx context.Context, req Request) Result

func (f DispatchFunc) Dispatch(ctx context.Context, req Request) Result {
	return f(ctx, req)
}

func NewDispatcher(reg *Registry) *Dispatcher {
	return &Dispatcher{reg: reg}
}

// Dispatch runs the handler of the command named in req.Text. Commands whose
// filter rejects the request are reported as unmatched so the message can
// continue down the host's pipeline.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Result {
	cmdName, ok := parseCommandName(req.Text)
	if !ok {
		return Result{Matched: false}
	}

	def, ok := d.reg.lookup(req.Channel, cmdName)
	if !ok {
		return Result{Matched: false}
	}
	if def.Handler == nil {
		// Definition-only command (for menu registration / discovery).
		return Result{Matched: false, Handled: false, Command: def.Name}
	}

	passed, err := allowed(ctx, def, req)
	if err != nil {
		return Result{Matched: true, Handled: false, Command: def.Name, Err: err}
	}
	if !passed {
		return Result{Matched: false, Filtered: true, Command: def.Name}
	}

	err = def.Handler(ctx, req)
	return Result{Matched: true, Handled: true, Command: def.Name, Err: err}
}

// Guard wraps h so it only runs when f passes for req.Update. Rejected
// requests return nil without calling h.
func Guard(f filters.Filter, h Handler) Handler {
	return func(ctx context.Context, req Request) error {
		ok, err := f.Check(ctx, req.Update)
		if err != nil {
			return fmt.Errorf("filter %s: %w", filters.Name(f), err)
		}
		if !ok {
			return nil
		}
		return h(ctx, req)
	}
}

func allowed(ctx context.Context, def Definition, req Request) (bool, error) {
	if def.Filter == nil {
		return true, nil
	}
	ok, err := def.Filter.Check(ctx, req.Update)
	if err != nil {
		return false, fmt.Errorf("command /%s filter %s: %w", def.Name, filters.Name(def.Filter), err)
	}
	return ok, nil
}

func firstToken(input string) string {
	parts := strings.Fields(strings.TrimSpace(input))
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

func parseCommandName(input string) (string, bool) {
	token := firstToken(input)
	if token == "" || !strings.HasPrefix(token, "/") {
		return "", false
	}

	name := strings.TrimPrefix(token, "/")
	if i := strings.Index(name, "@"); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	return name, true
}

func matchesCommand(def Definition, cmdName string) bool {
	if def.Name == cmdName {
		return true
	}
	return contains(def.Aliases, cmdName)
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
