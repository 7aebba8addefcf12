package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"finbot/internal/application/usecase/dispatch"
	"finbot/internal/infrastructure/svc"
	"finbot/internal/interfaces/console"
)

var sendFlag bool

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Build the price digest once",
	RunE:  oneShot((*dispatch.Service).SendPriceUpdate),
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Build today's economic calendar once",
	RunE:  oneShot((*dispatch.Service).SendCalendar),
}

var briefCmd = &cobra.Command{
	Use:   "brief",
	Short: "Build the news brief once",
	RunE:  oneShot((*dispatch.Service).SendNewsBrief),
}

func init() {
	for _, c := range []*cobra.Command{digestCmd, calendarCmd, briefCmd} {
		c.Flags().BoolVar(&sendFlag, "send", false, "send to the configured chat instead of printing")
		rootCmd.AddCommand(c)
	}
}

// oneShot 默认打印到 stdout，--send 时走配置的出口
func oneShot(job func(*dispatch.Service, context.Context) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(!sendFlag)
		if err != nil {
			return err
		}

		var opts []svc.Option
		if !sendFlag {
			gw := console.NewGatewayIO(cmd.OutOrStdout(), strings.NewReader(""), cfg.Telegram.ChatID)
			opts = append(opts, svc.WithGateway(gw, nil))
		}
		sc, err := svc.New(cmd.Context(), cfg, opts...)
		if err != nil {
			return err
		}
		defer sc.Close()

		return job(sc.DispatchService(), cmd.Context())
	}
}
