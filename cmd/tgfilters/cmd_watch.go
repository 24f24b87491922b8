package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mymmrac/telego"
	"github.com/spf13/cobra"

	"github.com/sipeed/tgfilters/cmd/tgfilters/internal"
	"github.com/sipeed/tgfilters/pkg/filters"
	"github.com/sipeed/tgfilters/pkg/logger"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [filter...]",
		Short: "Long-poll a bot and log filter verdicts for each incoming message",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := internal.LoadConfig()
			if err != nil {
				return fmt.Errorf("error loading config: %w", err)
			}
			if cfg.Telegram.Token == "" {
				return fmt.Errorf("telegram token is not configured")
			}

			gate, err := cfg.Filters.BuildFilter()
			if err != nil {
				return err
			}
			fs, err := resolveFilters(args, gate)
			if err != nil {
				return err
			}

			bot, err := internal.NewBot(cfg.Telegram)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return watch(ctx, bot, cfg.Filters.NewExecutor(), fs)
		},
	}
}

func watch(ctx context.Context, bot *telego.Bot, executor *filters.Executor, fs []filters.Filter) error {
	logger.InfoC("watch", "Starting Telegram bot (polling mode)...")

	updates, err := bot.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout: 30,
	})
	if err != nil {
		return fmt.Errorf("failed to start long polling: %w", err)
	}

	self, err := bot.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("getMe: %w", err)
	}
	logger.InfoCF("watch", "Telegram bot connected", map[string]any{
		"username": self.Username,
	})

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				logger.InfoC("watch", "Updates channel closed")
				return nil
			}
			msg := update.Message
			if msg == nil {
				msg = update.ChannelPost
			}
			if msg == nil {
				continue
			}
			u := &filters.Update{Message: msg, Bot: bot, Executor: executor, Self: self}
			logVerdicts(msg, evaluate(ctx, u, fs))
		}
	}
}

func logVerdicts(msg *telego.Message, verdicts []verdict) {
	fields := map[string]any{
		"chat_id":    msg.Chat.ID,
		"message_id": msg.MessageID,
	}
	for _, v := range verdicts {
		if v.Err != nil {
			fields[v.Name] = "error: " + v.Err.Error()
			continue
		}
		fields[v.Name] = v.OK
	}
	logger.InfoCF("watch", "Message verdicts", fields)
}
