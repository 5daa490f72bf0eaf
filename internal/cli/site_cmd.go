package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/timeclock/internal/cli/formatter"
	"github.com/alexanderramin/timeclock/internal/domain"
	"github.com/spf13/cobra"
)

func newSiteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "site",
		Short: "Manage worksites and their geofences",
	}

	cmd.AddCommand(
		newSiteAddCmd(app),
		newSiteListCmd(app),
		newSiteRemoveCmd(app),
	)

	return cmd
}

func newSiteAddCmd(app *App) *cobra.Command {
	var name string
	var lat, lon, radius float64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a worksite",
		RunE: func(cmd *cobra.Command, args []string) error {
			site := &domain.Worksite{
				Name:         name,
				Latitude:     lat,
				Longitude:    lon,
				RadiusMeters: radius,
			}

			// When invoked from a terminal without flags, collect the
			// fields with a form instead of failing on validation.
			if name == "" && app.interactive() {
				var nameS, latS, lonS, radiusS string
				if err := siteForm(&nameS, &latS, &lonS, &radiusS).Run(); err != nil {
					return err
				}
				site.Name = strings.TrimSpace(nameS)
				site.Latitude, _ = strconv.ParseFloat(strings.TrimSpace(latS), 64)
				site.Longitude, _ = strconv.ParseFloat(strings.TrimSpace(lonS), 64)
				if r := strings.TrimSpace(radiusS); r != "" {
					site.RadiusMeters, _ = strconv.ParseFloat(r, 64)
				}
			}

			if err := app.Sites.Create(context.Background(), site); err != nil {
				return err
			}

			fmt.Printf("Added %s %s with a %s fence\n",
				formatter.Bold(site.Name),
				formatter.Dim(formatter.Coordinates(site.Latitude, site.Longitude)),
				formatter.Bold(fmt.Sprintf("%.0fm", site.EffectiveRadius())),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Worksite name")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude of the site center")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude of the site center")
	cmd.Flags().Float64Var(&radius, "radius", 0, "Geofence radius in meters (0 for default)")

	return cmd
}

func newSiteListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered worksites",
		RunE: func(cmd *cobra.Command, args []string) error {
			sites, err := app.Sites.List(context.Background())
			if err != nil {
				return err
			}
			fmt.Print(formatter.FormatSites(sites))
			fmt.Println()
			return nil
		},
	}
}

func newSiteRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id-or-name>",
		Short: "Remove a worksite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Sites.Delete(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Removed %s\n", formatter.Bold(args[0]))
			return nil
		},
	}
}
