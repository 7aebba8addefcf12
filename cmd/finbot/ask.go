package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"finbot/internal/infrastructure/svc"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the AI model a question from the terminal",
	Args:  cobra.MinimumNArgs(1),
	RunE:  askAction,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func askAction(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	if !cfg.AI.Enabled {
		return errors.New("ai is disabled in config")
	}
	sc, err := svc.New(cmd.Context(), cfg, svc.WithoutGateway())
	if err != nil {
		return err
	}
	defer sc.Close()

	answer := sc.DispatchService().Answer(cmd.Context(), strings.Join(args, " "))
	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}
