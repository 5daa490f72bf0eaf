package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/timeclock/internal/service"
)

// FormatDrainResult renders the outcome of a manual sync pass.
func FormatDrainResult(res service.DrainResult, status service.QueueStatus) string {
	var b strings.Builder

	switch {
	case res.Applied == 0 && res.Skipped == 0 && res.Errors == 0 && status.Pending == 0:
		b.WriteString(StyleGreen.Render("Queue is empty.") + "\n")
	case res.Errors == 0 && res.Skipped == 0:
		b.WriteString(StyleGreen.Render(fmt.Sprintf("Applied %d operation(s).", res.Applied)) + "\n")
	default:
		b.WriteString(fmt.Sprintf("%s applied, %s skipped, %s failed\n",
			StyleGreen.Render(fmt.Sprint(res.Applied)),
			StyleYellow.Render(fmt.Sprint(res.Skipped)),
			StyleRed.Render(fmt.Sprint(res.Errors)),
		))
	}

	b.WriteString("\n")
	b.WriteString(ConnectivityBadge(status.Online))
	b.WriteString(Dim(fmt.Sprintf("  %d pending", status.Pending)))
	if status.Failed > 0 {
		b.WriteString(StyleRed.Render(fmt.Sprintf("  %d need review", status.Failed)))
	}
	b.WriteString("\n")

	return RenderBox("Sync", b.String())
}
