package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/timeclock/internal/cli/formatter"
	"github.com/alexanderramin/timeclock/internal/service"
	"github.com/spf13/cobra"
)

func newInCmd(app *App) *cobra.Command {
	var siteID string
	var noLocation bool

	cmd := &cobra.Command{
		Use:   "in",
		Short: "Clock in and start a new time entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := app.Clock.ClockIn(context.Background(), service.ClockInOptions{
				SiteID:       siteID,
				SkipLocation: noLocation,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Clocked in at %s\n", formatter.Bold(entry.ClockInAt.Local().Format("15:04")))
			if entry.LocationValidation != nil {
				fmt.Println(formatter.GeofenceBadge(entry.LocationValidation))
			} else if entry.ClockInLocation == nil && !noLocation {
				fmt.Println(formatter.Dim("No location fix; entry recorded without one."))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&siteID, "site", "", "Worksite ID or name to validate the clock-in location against")
	cmd.Flags().BoolVar(&noLocation, "no-location", false, "Skip the location fix")

	return cmd
}

func newOutCmd(app *App) *cobra.Command {
	var note string
	var noLocation bool

	cmd := &cobra.Command{
		Use:   "out",
		Short: "Clock out and complete the current entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := app.Clock.ClockOut(context.Background(), service.ClockOutOptions{
				Note:         note,
				SkipLocation: noLocation,
			})
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			fmt.Printf("Clocked out at %s\n", formatter.Bold(entry.ClockOutAt.Local().Format("15:04")))
			fmt.Printf("Worked %s", formatter.Bold(formatter.FormatMinutes(entry.WorkedMinutes(now))))
			if breaks := entry.BreakMinutes(now); breaks > 0 {
				fmt.Printf(" %s", formatter.Dim(fmt.Sprintf("(+%s break)", formatter.FormatMinutes(breaks))))
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "Note to attach to the completed entry")
	cmd.Flags().BoolVar(&noLocation, "no-location", false, "Skip the location fix")

	return cmd
}

func newBreakCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "break",
		Short: "Manage breaks in the current entry",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "start",
			Short: "Start a break",
			RunE: func(cmd *cobra.Command, args []string) error {
				entry, err := app.Clock.StartBreak(context.Background())
				if err != nil {
					return err
				}
				fmt.Printf("Break started at %s\n", formatter.Bold(entry.BreakStartedAt.Local().Format("15:04")))
				return nil
			},
		},
		&cobra.Command{
			Use:   "end",
			Short: "End the current break",
			RunE: func(cmd *cobra.Command, args []string) error {
				entry, err := app.Clock.EndBreak(context.Background())
				if err != nil {
					return err
				}
				fmt.Printf("Back to work. %s on break so far.\n",
					formatter.Bold(formatter.FormatMinutes(entry.BreakAccumulatedMin)))
				return nil
			},
		},
	)

	return cmd
}
