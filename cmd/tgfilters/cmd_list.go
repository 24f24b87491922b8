package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sipeed/tgfilters/pkg/filters"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in filter names",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range filters.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}
