// Package filters decides whether an incoming Telegram message should be
// dispatched to a handler.
//
// A Filter is a boolean predicate over an Update. Filters compose with Not,
// And and Or; composites evaluate their operands left to right and stop as
// soon as the verdict is known. Two kinds of leaf predicates exist:
//
//   - Func receives the caller's context and may block on I/O (for example a
//     Bot API call). It runs inline on the calling goroutine.
//   - SyncFunc is a plain func(*Update) bool. Each evaluation is handed to the
//     update's Executor so a slow predicate never runs on the caller's
//     goroutine and can be abandoned when the context is cancelled.
package filters

import (
	"context"
	"fmt"
	"strings"
)

// Filter reports whether an update should be handled.
type Filter interface {
	Check(ctx context.Context, u *Update) (bool, error)
}

// Func is a context-aware predicate evaluated on the caller's goroutine.
type Func func(ctx context.Context, u *Update) (bool, error)

func (f Func) Check(ctx context.Context, u *Update) (bool, error) {
	return f(ctx, u)
}

// SyncFunc is a blocking predicate evaluated on the update's Executor.
type SyncFunc func(u *Update) bool

func (f SyncFunc) Check(ctx context.Context, u *Update) (bool, error) {
	return u.executor().Run(ctx, func() bool {
		return f(u)
	})
}

type named struct {
	name string
	f    Filter
}

// New gives f a display name. The name is what String returns and what
// error messages from composites refer to.
func New(name string, f Filter) Filter {
	if name == "" {
		name = "custom_filter"
	}
	return &named{name: name, f: f}
}

func (n *named) Check(ctx context.Context, u *Update) (bool, error) {
	return n.f.Check(ctx, u)
}

func (n *named) String() string { return n.name }

// Name returns the display name of f: the name given to New, the expression
// of a composite, or the Go type for anything else.
func Name(f Filter) string {
	if s, ok := f.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", f)
}

type notFilter struct {
	base Filter
}

// Not inverts the verdict of f.
func Not(f Filter) Filter {
	return &notFilter{base: f}
}

func (n *notFilter) Check(ctx context.Context, u *Update) (bool, error) {
	ok, err := n.base.Check(ctx, u)
	if err != nil {
		return false, fmt.Errorf("%s: %w", Name(n.base), err)
	}
	return !ok, nil
}

func (n *notFilter) String() string {
	return "not " + Name(n.base)
}

type andFilter struct {
	operands []Filter
}

// And passes when every operand passes. Operands are evaluated in order and
// evaluation stops at the first one that does not pass.
func And(a, b Filter, more ...Filter) Filter {
	return &andFilter{operands: join(a, b, more)}
}

func (f *andFilter) Check(ctx context.Context, u *Update) (bool, error) {
	for _, op := range f.operands {
		ok, err := op.Check(ctx, u)
		if err != nil {
			return false, fmt.Errorf("%s: %w", Name(op), err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (f *andFilter) String() string {
	return expression(f.operands, " and ")
}

type orFilter struct {
	operands []Filter
}

// Or passes when any operand passes. Operands are evaluated in order and
// evaluation stops at the first one that passes.
func Or(a, b Filter, more ...Filter) Filter {
	return &orFilter{operands: join(a, b, more)}
}

func (f *orFilter) Check(ctx context.Context, u *Update) (bool, error) {
	for _, op := range f.operands {
		ok, err := op.Check(ctx, u)
		if err != nil {
			return false, fmt.Errorf("%s: %w", Name(op), err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (f *orFilter) String() string {
	return expression(f.operands, " or ")
}

func join(a, b Filter, more []Filter) []Filter {
	out := make([]Filter, 0, 2+len(more))
	out = append(out, a, b)
	return append(out, more...)
}

func expression(operands []Filter, sep string) string {
	parts := make([]string, 0, len(operands))
	for _, op := range operands {
		parts = append(parts, Name(op))
	}
	return "(" + strings.Join(parts, sep) + ")"
}
