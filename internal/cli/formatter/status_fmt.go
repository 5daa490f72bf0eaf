package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/timeclock/internal/domain"
	"github.com/alexanderramin/timeclock/internal/service"
)

// FormatStatus renders the current entry (nil when idle) and the sync
// snapshot into the status dashboard string.
func FormatStatus(entry *domain.TimeEntry, status service.QueueStatus, now time.Time) string {
	var b strings.Builder

	if entry == nil {
		b.WriteString(StatePill(domain.EntryIdle) + "\n")
	} else {
		b.WriteString(StatePill(entry.State) + "\n\n")
		b.WriteString(fmt.Sprintf("%s  %s\n", Dim("Elapsed"), Bold(FormatClock(entry.ElapsedSeconds(now)))))
		b.WriteString(fmt.Sprintf("%s  %s\n", Dim("Worked "), StyleFg.Render(FormatMinutes(entry.WorkedMinutes(now)))))
		b.WriteString(fmt.Sprintf("%s  %s\n", Dim("Breaks "), StyleFg.Render(FormatMinutes(entry.BreakMinutes(now)))))
		b.WriteString(fmt.Sprintf("%s  %s\n", Dim("Since  "), StyleFg.Render(entry.ClockInAt.Local().Format("15:04"))))

		if entry.ClockInLocation != nil {
			loc := Coordinates(entry.ClockInLocation.Latitude, entry.ClockInLocation.Longitude)
			b.WriteString(fmt.Sprintf("%s  %s  %s\n", Dim("Fix    "), StyleFg.Render(loc), GeofenceBadge(entry.LocationValidation)))
		}
		if entry.RemoteID != nil {
			b.WriteString(fmt.Sprintf("%s  %s\n", Dim("Synced "), TruncID(*entry.RemoteID)))
		} else {
			b.WriteString(fmt.Sprintf("%s  %s\n", Dim("Synced "), StyleYellow.Render("local only")))
		}
	}

	b.WriteString("\n")
	b.WriteString(ConnectivityBadge(status.Online))
	if status.Pending > 0 {
		b.WriteString(Dim(fmt.Sprintf("  %d pending", status.Pending)))
	}
	if status.Failed > 0 {
		b.WriteString(StyleRed.Render(fmt.Sprintf("  %d need review", status.Failed)))
	}
	b.WriteString("\n")

	return RenderBox("Time Clock", b.String())
}
