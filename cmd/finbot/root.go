package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"finbot/internal/infrastructure/config"
	"finbot/internal/infrastructure/logger"
)

// Version and Commit are set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

var (
	configPath string
	logLevel   string
	dryRun     bool
)

var rootCmd = &cobra.Command{
	Use:           "finbot",
	Short:         "Market quotes, feed forwarding and Q&A for a Telegram channel",
	Long:          "finbot pushes scheduled market digests to a Telegram channel, forwards new posts from a social feed, and answers questions addressed to the bot.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "finbot %s (%s)\n", Version, Commit)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "configs/config.toml", "path to config.toml")
	pf.StringVar(&logLevel, "log-level", "", "override app.log_level")
	pf.BoolVar(&dryRun, "dry-run", false, "print messages to stdout instead of sending them")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	logger.Setup("info")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("finbot exited")
		return err
	}
	return nil
}

// loadConfig forceDry 用于不需要 telegram 的命令
func loadConfig(forceDry bool) (*config.Config, error) {
	cfg, err := config.Load(configPath, func(c *config.Config) {
		if dryRun || forceDry {
			c.App.DryRun = true
		}
		if logLevel != "" {
			c.App.LogLevel = logLevel
		}
	})
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", configPath, err)
	}
	logger.Setup(cfg.App.LogLevel)
	return cfg, nil
}
