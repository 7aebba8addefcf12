package main

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"finbot/internal/infrastructure/svc"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the scheduler and the message listener",
	RunE:  runAction,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runAction(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	sc, err := svc.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer sc.Close()

	log.Info().
		Str("config", configPath).
		Int("instruments", len(sc.Instruments)).
		Int64("chat_id", cfg.Telegram.ChatID).
		Bool("dry_run", cfg.App.DryRun).
		Msg("finbot started")

	err = sc.DispatchService().Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Info().Msg("finbot stopped")
		return nil
	}
	return err
}
