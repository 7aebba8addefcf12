package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"finbot/internal/domain"
	"finbot/internal/infrastructure/gateway/telegram"
	"finbot/internal/infrastructure/svc"
)

var chatIDWait time.Duration

var chatIDCmd = &cobra.Command{
	Use:   "chat-id",
	Short: "Print the chat id of messages the bot receives",
	Long:  "Add the bot to a channel or group, send it a message, and this command prints the chat id to put in telegram.chat_id.",
	RunE:  chatIDAction,
}

var sendTestCmd = &cobra.Command{
	Use:   "send-test",
	Short: "Send a test message to the configured chat",
	RunE:  sendTestAction,
}

func init() {
	chatIDCmd.Flags().DurationVar(&chatIDWait, "wait", 60*time.Second, "how long to listen")
	rootCmd.AddCommand(chatIDCmd, sendTestCmd)
}

func chatIDAction(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	gw, err := telegram.New(telegram.Options{
		Token:       cfg.Telegram.Token,
		APIEndpoint: cfg.Telegram.APIEndpoint,
		PollTimeout: 10,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), chatIDWait)
	defer cancel()
	updates, err := gw.Updates(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "listening as @%s for %s, send a message to the bot...\n", gw.BotName(), chatIDWait)
	seen := map[int64]bool{}
	for m := range updates {
		if seen[m.ChatID] {
			continue
		}
		seen[m.ChatID] = true
		fmt.Fprintf(out, "chat_id = %d  (from %s: %q)\n", m.ChatID, m.From, m.Text)
	}
	if len(seen) == 0 {
		fmt.Fprintln(out, "no messages received")
	}
	return nil
}

func sendTestAction(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}
	sc, err := svc.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer sc.Close()

	text := fmt.Sprintf("✅ finbot %s test message\n🕐 %s", Version, time.Now().In(cfg.Location()).Format("2006-01-02 15:04:05"))
	id, err := sc.Gateway.Send(cmd.Context(), domain.OutMessage{ChatID: cfg.Telegram.ChatID, Text: text})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "sent message #%d to %d\n", id, cfg.Telegram.ChatID)
	return nil
}
