package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"finbot/internal/infrastructure/config"
	"finbot/internal/infrastructure/quote"
)

var checkCmd = &cobra.Command{
	Use:   "check-config",
	Short: "Validate the config and print instruments and schedules",
	RunE:  checkAction,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func printCheck(w io.Writer, ok bool, format string, args ...any) {
	mark := "✓"
	if !ok {
		mark = "✗"
	}
	fmt.Fprintf(w, "  %s %s\n", mark, fmt.Sprintf(format, args...))
}

func checkAction(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	cfg, err := loadConfig(false)
	if err != nil {
		printCheck(out, false, "%v", err)
		return err
	}
	printCheck(out, true, "config %s", configPath)

	insts, err := cfg.BuildInstruments()
	if err != nil {
		printCheck(out, false, "instruments: %v", err)
		return err
	}
	reg := quote.DefaultRegistry()
	bad := 0
	fmt.Fprintln(out, "instruments:")
	for _, in := range insts {
		names := make([]string, 0, len(in.Sources))
		for _, s := range in.Sources {
			if _, ok := reg.Parser(s.Shape); !ok {
				bad++
				printCheck(out, false, "%s/%s: unknown shape %q (known: %s)", in.Key, s.Name, s.Shape, strings.Join(reg.Shapes(), ", "))
			}
			names = append(names, fmt.Sprintf("%s[%s]", s.Name, s.Shape))
		}
		printCheck(out, true, "%-14s %s %s -> %s", in.Key, in.Glyph, in.Label, strings.Join(names, " > "))
	}

	fmt.Fprintln(out, "schedule:")
	now := time.Now().In(cfg.Location())
	next := func(name, spec string) {
		if config.Off(spec) {
			printCheck(out, true, "%-12s off", name)
			return
		}
		s, err := cron.ParseStandard(spec)
		if err != nil {
			bad++
			printCheck(out, false, "%-12s %q: %v", name, spec, err)
			return
		}
		printCheck(out, true, "%-12s %-14s next %s", name, spec, s.Next(now).Format("01-02 15:04"))
	}
	for _, spec := range cfg.Schedule.PriceUpdate {
		next("price_update", spec)
	}
	next("calendar", cfg.Schedule.Calendar)
	next("news_brief", cfg.Schedule.NewsBrief)
	if cfg.Feed.Enabled {
		next("feed_check", cfg.Schedule.FeedCheck)
	}

	fmt.Fprintln(out, "components:")
	printCheck(out, true, "timezone %s", cfg.App.Timezone)
	printCheck(out, true, "dry run %v", cfg.App.DryRun)
	if cfg.Feed.Enabled {
		printCheck(out, true, "feed @%s via %d mirrors, window %d", cfg.Feed.Username, len(cfg.Feed.Mirrors), cfg.Feed.SeenLimit)
	} else {
		printCheck(out, true, "feed disabled")
	}
	if cfg.AI.Enabled {
		printCheck(out, true, "ai %s/%s", cfg.AI.Provider, cfg.AI.Model)
	} else {
		printCheck(out, true, "ai disabled")
	}
	printCheck(out, true, "storage %s", strings.Join(backends(cfg), ", "))

	if bad > 0 {
		return fmt.Errorf("%d problems found", bad)
	}
	return nil
}

func backends(cfg *config.Config) []string {
	var out []string
	st := cfg.Storage
	if st.SQLite.Enabled {
		out = append(out, "sqlite:"+st.SQLite.Path)
	}
	if st.Redis.Enabled {
		out = append(out, "redis:"+st.Redis.Addr)
	}
	if st.Postgres.Enabled {
		out = append(out, "postgres")
	}
	if st.Badger.Enabled {
		p := st.Badger.Path
		if p == "" {
			p = "memory"
		}
		out = append(out, "badger:"+p)
	}
	if len(out) == 0 {
		out = append(out, "memory")
	}
	return out
}
