package commands

import (
	"context"
	"fmt"
)

type Outcome int

const (
	OutcomePassthrough Outcome = iota
	OutcomeHandled
	OutcomeRejected
	OutcomeFiltered
)

func (o Outcome) String() string {
	switch o {
	case OutcomePassthrough:
		return "passthrough"
	case OutcomeHandled:
		return "handled"
	case OutcomeRejected:
		return "rejected"
	case OutcomeFiltered:
		return "filtered"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

type ExecuteResult struct {
	Outcome Outcome
	Command string
	Reply   string
	Err     error
}

type Executor struct {
	reg *Registry
}

func NewExecutor(reg *Registry) *Executor {
	return &Executor{reg: reg}
}

func (e *Executor) Execute(ctx context.Context, req Request) ExecuteResult {
	cmdName, ok := parseCommandName(req.Text)
	if !ok {
		return ExecuteResult{Outcome: OutcomePassthrough}
	}

	if e == nil || e.reg == nil {
		return ExecuteResult{Outcome: OutcomePassthrough, Command: cmdName}
	}

	if def, ok := e.reg.lookup(req.Channel, cmdName); ok {
		if def.Handler == nil {
			return ExecuteResult{Outcome: OutcomePassthrough, Command: def.Name}
		}
		passed, err := allowed(ctx, def, req)
		if err != nil {
			return ExecuteResult{Outcome: OutcomeFiltered, Command: def.Name, Err: err}
		}
		if !passed {
			return ExecuteResult{Outcome: OutcomeFiltered, Command: def.Name}
		}
		err = def.Handler(ctx, req)
		return ExecuteResult{Outcome: OutcomeHandled, Command: def.Name, Err: err}
	}

	for _, def := range e.reg.defs {
		if !matchesCommand(def, cmdName) {
			continue
		}
		return ExecuteResult{
			Outcome: OutcomeRejected,
			Command: def.Name,
			Reply:   fmt.Sprintf("Command /%s is not supported on %s.", def.Name, req.Channel),
		}
	}

	return ExecuteResult{Outcome: OutcomePassthrough, Command: cmdName}
}
