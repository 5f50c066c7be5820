package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/attendwatch/internal/config"
	"github.com/matheuskafuri/attendwatch/internal/stats"
)

var flagMonth string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored days",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath())
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		var month string
		if flagMonth != "" {
			if month, err = parseMonth(flagMonth, time.Now()); err != nil {
				return err
			}
		}

		st, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer st.Close()

		series, err := st.ReadAll(cmd.Context())
		if err != nil {
			return err
		}

		n := 0
		for _, e := range series.Sorted() {
			if !strings.HasPrefix(e.Date, month) {
				continue
			}
			fmt.Println(formatEntry(e))
			n++
		}
		if n == 0 {
			fmt.Println("No days stored.")
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show monthly present, absent and leave totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath())
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		month, err := parseMonth(flagMonth, time.Now().In(cfg.Location()))
		if err != nil {
			return err
		}

		st, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer st.Close()

		series, err := st.ReadAll(cmd.Context())
		if err != nil {
			return err
		}
		hs, err := holidayStore(cfg).Dates()
		if err != nil {
			return err
		}

		m, err := stats.Month(series, month, hs, cfg.WeekendDays())
		if err != nil {
			return err
		}
		fmt.Printf("Month:        %s\n", m.Month)
		fmt.Printf("Working days: %d\n", m.WorkingDays)
		fmt.Printf("Present:      %d\n", m.Present)
		fmt.Printf("Absent:       %d\n", m.Absent)
		fmt.Printf("Leave:        %d\n", m.Leave)
		fmt.Printf("Rate:         %.1f%%\n", m.Rate())
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&flagMonth, "month", "", "only show this month (YYYY-MM)")
	statsCmd.Flags().StringVar(&flagMonth, "month", "", "month to total (YYYY-MM, default current)")
}
