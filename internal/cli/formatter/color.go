package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/timeclock/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// StatePill returns a colored indicator for an entry state.
func StatePill(state domain.EntryState) string {
	switch state {
	case domain.EntryActive:
		return StyleGreen.Render("● Clocked In")
	case domain.EntryOnBreak:
		return StyleYellow.Render("◌ On Break")
	case domain.EntryCompleted:
		return StyleDim.Render("✔ Completed")
	case domain.EntryIdle:
		return StyleDim.Render("○ Clocked Out")
	default:
		return StyleDim.Render(string(state))
	}
}

// ConnectivityBadge renders the online/offline indicator.
func ConnectivityBadge(online bool) string {
	if online {
		return StyleGreen.Render("● online")
	}
	return StyleRed.Render("○ offline")
}

// GeofenceBadge renders a geofence verdict, or a dim placeholder when
// no verdict exists.
func GeofenceBadge(v *domain.GeofenceResult) string {
	if v == nil {
		return StyleDim.Render("--")
	}
	if v.Valid {
		return StyleGreen.Render(fmt.Sprintf("✔ on site (%.0fm)", v.DistanceMeters))
	}
	return StyleYellow.Render(fmt.Sprintf("▲ off site (%.0fm)", v.DistanceMeters))
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
