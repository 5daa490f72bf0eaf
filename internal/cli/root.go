package cli

import (
	"github.com/alexanderramin/timeclock/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Clock service.ClockService
	Sync  service.SyncService
	Sites service.WorksiteService

	// IsInteractive reports whether stdin is attached to a terminal.
	// Prompting commands fall back to flag-only mode when it is not.
	IsInteractive func() bool
}

// NewRootCmd creates the top-level "timeclock" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "timeclock",
		Short: "Offline-first work time tracker",
	}

	root.AddCommand(
		newInCmd(app),
		newOutCmd(app),
		newBreakCmd(app),
		newStatusCmd(app),
		newHistoryCmd(app),
		newSyncCmd(app),
		newSiteCmd(app),
		newWatchCmd(app),
		newResetCmd(app),
	)

	return root
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}
