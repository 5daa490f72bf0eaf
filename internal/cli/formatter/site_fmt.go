package formatter

import (
	"fmt"

	"github.com/alexanderramin/timeclock/internal/domain"
)

// FormatSites renders the worksite registry as a table.
func FormatSites(sites []*domain.Worksite) string {
	if len(sites) == 0 {
		return Dim("No worksites registered. Add one with: timeclock site add") + "\n"
	}

	headers := []string{"ID", "NAME", "COORDINATES", "RADIUS"}
	rows := make([][]string, 0, len(sites))
	for _, s := range sites {
		rows = append(rows, []string{
			TruncID(s.ID),
			Bold(s.Name),
			StyleFg.Render(Coordinates(s.Latitude, s.Longitude)),
			StyleBlue.Render(fmt.Sprintf("%.0fm", s.EffectiveRadius())),
		})
	}
	return RenderBox("Worksites", RenderTable(headers, rows))
}
