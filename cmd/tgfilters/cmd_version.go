package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sipeed/tgfilters/cmd/tgfilters/internal"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tgfilters %s\n", internal.FormatVersion())
			build, goVer := internal.FormatBuildInfo()
			if build != "" {
				fmt.Fprintf(out, "  Build: %s\n", build)
			}
			if goVer != "" {
				fmt.Fprintf(out, "  Go: %s\n", goVer)
			}
		},
	}
}
