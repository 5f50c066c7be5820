package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/attendwatch/internal/attendance"
	"github.com/matheuskafuri/attendwatch/internal/config"
	"github.com/matheuskafuri/attendwatch/internal/progress"
)

var flagFollow bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the progress of the current or last fetch",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath())
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		src := progress.NewFile(cfg.ProgressPath())

		if !flagFollow {
			s, err := src.Load(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(formatProgress(s))
			return printToday(cmd.Context(), cfg)
		}

		return progress.Poll(cmd.Context(), src, time.Second,
			func(s progress.State) { fmt.Println(formatProgress(s)) },
			func(err error) { fmt.Fprintln(os.Stderr, "warn:", err) },
		)
	},
}

func init() {
	statusCmd.Flags().BoolVarP(&flagFollow, "follow", "f", false, "poll until the fetch finishes")
}

func printToday(ctx context.Context, cfg *config.Config) error {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	series, err := st.ReadAll(ctx)
	if err != nil {
		return err
	}
	today := attendance.Today(time.Now(), cfg.Location())
	if e, ok := series.Find(today); ok {
		fmt.Println(formatEntry(e))
	} else {
		fmt.Printf("%s  not fetched yet\n", today)
	}
	return nil
}
