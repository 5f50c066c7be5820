package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Pull today's attendance from the portal",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup(cmd.Context(), os.Stderr)
		if err != nil {
			return err
		}
		defer d.Close()

		updates, unsubscribe := d.broker.Subscribe()
		printed := make(chan struct{})
		go func() {
			defer close(printed)
			for s := range updates {
				fmt.Println(formatProgress(s))
			}
		}()

		res, err := d.ingest.Run(cmd.Context())
		unsubscribe()
		<-printed
		if err != nil {
			return err
		}
		if res.Err != nil {
			return fmt.Errorf("fetch failed: %w", res.Err)
		}

		fmt.Println(formatEntry(res.Entry))
		if res.Decision != nil {
			sent := "suppressed"
			if res.Entry.NotificationSent {
				sent = "sent"
			}
			fmt.Printf("Notification %s: %s\n", sent, res.Decision.Reason)
		}
		return nil
	},
}
