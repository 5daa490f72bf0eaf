package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/timeclock/internal/cli/formatter"
	"github.com/alexanderramin/timeclock/internal/service"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current entry and sync state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			entry, err := app.Clock.Current(ctx)
			if err != nil && !errors.Is(err, service.ErrNotClockedIn) {
				return err
			}

			status, err := app.Sync.Status(ctx)
			if err != nil {
				return err
			}

			fmt.Print(formatter.FormatStatus(entry, status, time.Now().UTC()))
			fmt.Println()
			return nil
		},
	}
}

func newHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show completed time entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := app.Clock.History(context.Background(), limit)
			if err != nil {
				return err
			}
			fmt.Print(formatter.FormatHistory(entries, time.Now().UTC()))
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries to show")

	return cmd
}
