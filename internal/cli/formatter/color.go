package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/learnpath/internal/domain"
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

// PlanStatusPill returns a colored indicator such as "◐ Pending".
func PlanStatusPill(status domain.PlanStatus) string {
	switch status {
	case domain.PlanPendingApproval:
		return StyleYellow.Render("◐ Pending")
	case domain.PlanApproved:
		return StyleBlue.Render("● Approved")
	case domain.PlanInProgress:
		return StyleGreen.Render("▶ In Progress")
	case domain.PlanCompleted:
		return StyleDim.Render("✔ Completed")
	case domain.PlanRejected:
		return StyleRed.Render("✖ Rejected")
	default:
		return StyleDim.Render(string(status))
	}
}

// ItemStatusPill shows a module's state. Locked modules that were never
// started render as locked rather than todo.
func ItemStatusPill(status domain.ItemStatus, locked bool) string {
	switch {
	case status == domain.ItemCompleted:
		return StyleDim.Render("✔ Done")
	case status == domain.ItemInProgress:
		return StyleGreen.Render("● Learning")
	case locked:
		return StyleDim.Render("🔒 Locked")
	default:
		return StyleBlue.Render("○ Open")
	}
}

// PacePill shows whether a plan will finish within its duration.
func PacePill(level domain.RiskLevel) string {
	switch level {
	case domain.RiskCritical:
		return StyleRed.Render("▲ Behind")
	case domain.RiskAtRisk:
		return StyleYellow.Render("◆ At risk")
	default:
		return StyleGreen.Render("● On track")
	}
}

// SenderBadge labels a chat message author.
func SenderBadge(role domain.SenderRole) string {
	switch role {
	case domain.SenderAI:
		return StylePurple.Render("AI")
	case domain.SenderAdmin:
		return StyleYellow.Render("Admin")
	default:
		return StyleBlue.Render("Learner")
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
