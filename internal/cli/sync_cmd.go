package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/timeclock/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newSyncCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push queued operations to the remote time store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			res, err := app.Sync.Drain(ctx)
			if err != nil {
				return err
			}
			status, err := app.Sync.Status(ctx)
			if err != nil {
				return err
			}

			fmt.Print(formatter.FormatDrainResult(res, status))
			fmt.Println()
			return nil
		},
	}
}
