package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/attendwatch/internal/config"
	"github.com/matheuskafuri/attendwatch/internal/holiday"
)

var flagHolidayTo string

func holidayStore(cfg *config.Config) *holiday.Store {
	return holiday.NewStore(cfg.HolidaysPath())
}

func loadHolidays() (*holiday.Store, error) {
	cfg, err := config.Load(configPath())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return holidayStore(cfg), nil
}

var holidaysCmd = &cobra.Command{
	Use:   "holidays",
	Short: "Manage school holidays skipped by the auto-fetch",
}

var holidaysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List holidays",
	RunE: func(cmd *cobra.Command, args []string) error {
		hs, err := loadHolidays()
		if err != nil {
			return err
		}
		list, err := hs.List()
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No holidays.")
			return nil
		}
		for _, h := range list {
			fmt.Println(formatHoliday(h))
		}
		return nil
	},
}

var holidaysAddCmd = &cobra.Command{
	Use:   "add DATE NAME...",
	Short: "Add a holiday, or a range with --to",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		hs, err := loadHolidays()
		if err != nil {
			return err
		}
		date, name := args[0], strings.Join(args[1:], " ")

		if flagHolidayTo != "" {
			added, err := hs.AddRange(date, flagHolidayTo, name)
			if err != nil {
				return err
			}
			fmt.Printf("Added %d day(s): %s\n", len(added), name)
			return nil
		}

		if err := hs.Add(holiday.Holiday{Date: date, Name: name}); err != nil {
			return err
		}
		fmt.Printf("Added %s: %s\n", date, name)
		return nil
	},
}

var holidaysRmCmd = &cobra.Command{
	Use:     "rm DATE",
	Aliases: []string{"remove"},
	Short:   "Remove a holiday",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hs, err := loadHolidays()
		if err != nil {
			return err
		}
		if err := hs.Remove(args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed %s\n", args[0])
		return nil
	},
}

func init() {
	holidaysAddCmd.Flags().StringVar(&flagHolidayTo, "to", "", "last day of a holiday range (YYYY-MM-DD)")

	holidaysCmd.AddCommand(holidaysListCmd)
	holidaysCmd.AddCommand(holidaysAddCmd)
	holidaysCmd.AddCommand(holidaysRmCmd)
}
