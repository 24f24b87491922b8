// tgfilters evaluates Telegram message filters from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tgfilters",
		Short:         "Evaluate Telegram message filters",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(
		newListCmd(),
		newCheckCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
