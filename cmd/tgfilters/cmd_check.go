package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mymmrac/telego"
	"github.com/spf13/cobra"

	"github.com/sipeed/tgfilters/cmd/tgfilters/internal"
	"github.com/sipeed/tgfilters/pkg/config"
	"github.com/sipeed/tgfilters/pkg/filters"
)

func newCheckCmd() *cobra.Command {
	var (
		file    string
		offline bool
	)

	cmd := &cobra.Command{
		Use:   "check [filter...]",
		Short: "Evaluate filters against a message JSON document",
		Long: `Reads a Telegram Message object as JSON and prints the verdict of each
named filter. Without names the configured gate is used, and without a
configured gate every built-in filter is evaluated. Prefix a name with "!"
to negate it.`,
		Example: `tgfilters check -f message.json group_chat '!sender_bot'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := internal.LoadConfig()
			if err != nil {
				return fmt.Errorf("error loading config: %w", err)
			}

			in := cmd.InOrStdin()
			if file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			var bot *telego.Bot
			if !offline && cfg.Telegram.Token != "" {
				if bot, err = internal.NewBot(cfg.Telegram); err != nil {
					return err
				}
			}

			return runCheck(cmd.Context(), in, cmd.OutOrStdout(), cfg, bot, args)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "Message JSON file, - for stdin")
	cmd.Flags().BoolVar(&offline, "offline", false, "Do not create a Bot API client even if a token is configured")
	return cmd
}

func runCheck(ctx context.Context, in io.Reader, out io.Writer, cfg *config.Config, bot *telego.Bot, names []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var msg telego.Message
	if err := json.NewDecoder(in).Decode(&msg); err != nil {
		return fmt.Errorf("decoding message: %w", err)
	}

	gate, err := cfg.Filters.BuildFilter()
	if err != nil {
		return err
	}
	fs, err := resolveFilters(names, gate)
	if err != nil {
		return err
	}

	u := filters.NewUpdate(bot, &msg)
	u.Executor = cfg.Filters.NewExecutor()
	return writeVerdicts(out, evaluate(ctx, u, fs))
}
