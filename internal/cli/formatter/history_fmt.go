package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/timeclock/internal/domain"
)

// FormatHistory renders completed entries, newest first, as a table.
func FormatHistory(entries []*domain.TimeEntry, now time.Time) string {
	if len(entries) == 0 {
		return Dim("No completed entries yet.") + "\n"
	}

	headers := []string{"DATE", "IN", "OUT", "WORKED", "BREAKS", "FENCE", "SYNC"}
	rows := make([][]string, 0, len(entries))

	for _, e := range entries {
		out := Dim("--")
		if e.ClockOutAt != nil {
			out = StyleFg.Render(e.ClockOutAt.Local().Format("15:04"))
		}

		sync := StyleYellow.Render("local")
		if e.RemoteID != nil {
			sync = TruncID(*e.RemoteID)
		}

		rows = append(rows, []string{
			Bold(HumanDate(e.ClockInAt.Local())),
			StyleFg.Render(e.ClockInAt.Local().Format("15:04")),
			out,
			StyleGreen.Render(FormatMinutes(e.WorkedMinutes(now))),
			StyleFg.Render(FormatMinutes(e.BreakMinutes(now))),
			GeofenceBadge(e.LocationValidation),
			sync,
		})
	}

	var b strings.Builder
	b.WriteString(RenderTable(headers, rows))

	var total int
	for _, e := range entries {
		total += e.WorkedMinutes(now)
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s across %d entries\n", Dim("Total"), Bold(FormatMinutes(total)), len(entries)))

	return RenderBox("History", b.String())
}
