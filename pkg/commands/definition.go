package commands

import "github.com/sipeed/tgfilters/pkg/filters"

type Definition struct {
	Name        string
	Description string
	Usage       string
	Aliases     []string
	Channels    []string
	// Filter gates the handler. Nil lets every request through.
	Filter  filters.Filter
	Handler Handler
}
