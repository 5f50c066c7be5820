package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/attendwatch/internal/server"
)

var (
	flagAddr       string
	flagNoSchedule bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the daily auto-fetch loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		d, err := setup(ctx, os.Stderr)
		if err != nil {
			return err
		}
		defer d.Close()

		addr := flagAddr
		if addr == "" {
			addr = d.cfg.Get().Server.Addr
		}

		srv := server.New(server.Deps{
			Runner:    d.ingest,
			Store:     d.store,
			Progress:  d.progress,
			Broker:    d.broker,
			Holidays:  d.holidays,
			Scheduler: d.scheduler,
			Config:    d.cfg,
			Log:       d.log,
		})

		if !flagNoSchedule {
			go d.scheduler.Loop(ctx, time.Minute)
		}

		d.log.Info("listening on " + addr)
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&flagNoSchedule, "no-schedule", false, "disable automatic daily fetches")
}
