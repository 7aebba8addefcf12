package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"finbot/internal/application/usecase/dispatch"
	"finbot/internal/infrastructure/svc"
	"finbot/internal/interfaces/console"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Poll the social feed and print unseen posts without marking them",
	RunE:  feedAction,
}

func init() {
	rootCmd.AddCommand(feedCmd)
}

func feedAction(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	if !cfg.Feed.Enabled {
		return errors.New("feed is disabled in config")
	}
	sc, err := svc.New(cmd.Context(), cfg, svc.WithoutGateway())
	if err != nil {
		return err
	}
	defer sc.Close()

	items, err := sc.Feed.PollAndFilter(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	f := dispatch.NewFormatter(cfg.Location())
	for _, it := range items {
		fmt.Fprintf(out, "#%s\n%s\n\n", it.ID, console.StripTags(f.FeedItem(cfg.Feed.Username, it)))
	}
	fmt.Fprintf(out, "%d unseen, %d in window\n", len(items), len(sc.Feed.Seen()))
	return nil
}
