package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/timeclock/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newResetCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all local entries and queued operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				if !app.interactive() {
					return fmt.Errorf("refusing to reset without --force")
				}
				confirmed := false
				if err := confirmForm("Delete all local time entries and unsent operations?", &confirmed).Run(); err != nil {
					return err
				}
				if !confirmed {
					fmt.Println(formatter.Dim("Aborted."))
					return nil
				}
			}

			if err := app.Clock.Reset(context.Background()); err != nil {
				return err
			}
			fmt.Println("Local data wiped.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")

	return cmd
}
