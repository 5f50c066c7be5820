package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matheuskafuri/attendwatch/internal/config"
	"github.com/matheuskafuri/attendwatch/internal/update"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig string
	flagDebug  bool
	flagCheck  bool
)

var rootCmd = &cobra.Command{
	Use:   "attendwatch",
	Short: "Daily attendance tracker for the school portal",
	Long: `attendwatch logs in to the school portal once a day, works out whether
the student was present, absent or on leave, and sends one notification per
day when the status changes.

Run without a subcommand to open the dashboard.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Non-fatal: a missing .env is the common case
		_ = godotenv.Load()
	},
	RunE:         runTUI,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "log debug output")

	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "check GitHub for a newer release")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(holidaysCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("attendwatch %s (commit: %s, built: %s)\n", version, commit, date)
		if !flagCheck {
			return
		}
		channel := update.ChannelStable
		if cfg, err := config.Load(configPath()); err == nil {
			channel = cfg.Update.Channel
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		if r := update.New(channel).Check(ctx, version); r != nil {
			fmt.Println(r.Notice())
			fmt.Println(r.URL)
		} else {
			fmt.Printf("You are on the latest %s version.\n", channel)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
