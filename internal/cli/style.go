package cli

import (
	"strings"

	"github.com/aravindh-murugesan/updatesentry-go/internal/policy"
	"github.com/charmbracelet/lipgloss"
)

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	Padding(1, 5).
	MarginBottom(1).
	Align(lipgloss.Center).
	Border(lipgloss.RoundedBorder())

var promptStyle = lipgloss.NewStyle().
	Padding(1, 3).
	Width(56).
	Border(lipgloss.RoundedBorder())

var promptTitleStyle = lipgloss.NewStyle().Bold(true)

var mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

func tierColor(tier policy.Tier) lipgloss.Color {
	switch tier {
	case policy.TierForceUpdate:
		return lipgloss.Color("#E0245E")
	case policy.TierSoftNudge:
		return lipgloss.Color("#F5A623")
	case policy.TierRegularUpdate:
		return lipgloss.Color("#1DA1F2")
	default:
		return lipgloss.Color("#888888")
	}
}

// renderDecision draws the prompt the way a host app would present it.
// Only dismissible prompts get a Cancel button.
func renderDecision(d policy.Decision) string {
	if !d.Prompt() {
		return mutedStyle.Render("No prompt. " + d.Reason)
	}

	buttons := []string{"[ Update ]"}
	if d.Dismissible {
		buttons = append([]string{"[ Cancel ]"}, buttons...)
	}

	lines := []string{
		promptTitleStyle.Foreground(tierColor(d.Tier)).Render(d.Title),
		d.Description,
		"",
		strings.Join(buttons, "  "),
	}
	if d.RedirectURL != "" {
		lines = append(lines, mutedStyle.Render(d.RedirectURL))
	}

	return promptStyle.BorderForeground(tierColor(d.Tier)).Render(lipgloss.JoinVertical(lipgloss.Left, lines...)) +
		"\n" + mutedStyle.Render(d.Tier.String()+": "+d.Reason)
}
