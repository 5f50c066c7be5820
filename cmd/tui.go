package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/attendwatch/internal/tui"
	"github.com/matheuskafuri/attendwatch/internal/update"
)

func runTUI(cmd *cobra.Command, args []string) error {
	// Log lines would tear the alt screen; Rollbar still receives warnings.
	d, err := setup(cmd.Context(), io.Discard)
	if err != nil {
		return err
	}
	defer d.Close()

	cfg := d.cfg.Get()
	_, credErr := cfg.Credentials()

	var checkUpdate func(context.Context) string
	if cfg.Update.Check {
		checker := update.New(cfg.Update.Channel)
		checkUpdate = func(ctx context.Context) string {
			return checker.Check(ctx, version).Notice()
		}
	}

	return tui.Run(tui.RunOpts{
		Store:        d.store,
		Progress:     d.progress,
		Holidays:     d.holidays,
		Runner:       d.ingest,
		PortalURL:    cfg.Portal.BaseURL,
		Location:     cfg.Location(),
		Weekend:      cfg.WeekendDays(),
		Configured:   credErr == nil,
		CalendarOnly: cfg.CalendarOnly,
		CheckUpdate:  checkUpdate,
	})
}
