package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sipeed/tgfilters/pkg/filters"
)

type verdict struct {
	Name string
	OK   bool
	Err  error
}

// resolveFilters turns names into filters. With no names it falls back to
// gate, and without a gate to every built-in filter.
func resolveFilters(names []string, gate filters.Filter) ([]filters.Filter, error) {
	if len(names) == 0 && gate != nil {
		return []filters.Filter{gate}, nil
	}
	if len(names) == 0 {
		names = filters.Names()
	}

	out := make([]filters.Filter, 0, len(names))
	for _, name := range names {
		f, err := filters.Lookup(name)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func evaluate(ctx context.Context, u *filters.Update, fs []filters.Filter) []verdict {
	out := make([]verdict, 0, len(fs))
	for _, f := range fs {
		ok, err := f.Check(ctx, u)
		out = append(out, verdict{Name: filters.Name(f), OK: ok, Err: err})
	}
	return out
}

func writeVerdicts(w io.Writer, verdicts []verdict) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, v := range verdicts {
		result := fmt.Sprintf("%t", v.OK)
		if v.Err != nil {
			result = "error: " + v.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\n", v.Name, result)
	}
	return tw.Flush()
}
