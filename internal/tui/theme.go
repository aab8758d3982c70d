// Package tui renders the submission form and the admin dashboard in the
// terminal with Bubble Tea. All state transitions live in package portal;
// the models here translate key presses into those transitions.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/spec-kit/support-intake/internal/portal"
)

// Theme is the color palette shared by both screens. Colors are ANSI 256 codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color
	Accent     lipgloss.Color
	Success    lipgloss.Color
	Error      lipgloss.Color

	BadgeDanger    lipgloss.Color
	BadgeSecondary lipgloss.Color
	BadgeOutline   lipgloss.Color

	BorderColor   lipgloss.Color
	SelectedColor lipgloss.Color
	HelpText      lipgloss.Color
}

// DefaultTheme targets dark 256-color terminals.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),
	Accent:     lipgloss.Color("75"),
	Success:    lipgloss.Color("114"),
	Error:      lipgloss.Color("203"),

	BadgeDanger:    lipgloss.Color("196"),
	BadgeSecondary: lipgloss.Color("110"),
	BadgeOutline:   lipgloss.Color("245"),

	BorderColor:   lipgloss.Color("240"),
	SelectedColor: lipgloss.Color("212"),
	HelpText:      lipgloss.Color("241"),
}

// badgeStyle renders a priority badge. Danger is filled, secondary is
// tinted text, outline is a bordered label.
func (theme Theme) badgeStyle(variant portal.BadgeVariant) lipgloss.Style {
	base := lipgloss.NewStyle().Padding(0, 1).Bold(true)
	switch variant {
	case portal.BadgeDanger:
		return base.Foreground(lipgloss.Color("255")).Background(theme.BadgeDanger)
	case portal.BadgeSecondary:
		return base.Foreground(lipgloss.Color("234")).Background(theme.BadgeSecondary)
	default:
		return base.Foreground(theme.BadgeOutline)
	}
}

func (theme Theme) outlineLabel() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.FaintText).Padding(0, 1).
		Border(lipgloss.NormalBorder(), false, true).BorderForeground(theme.BorderColor)
}

func (theme Theme) title() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(theme.NormalText)
}

func (theme Theme) faint() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.FaintText)
}

func (theme Theme) help() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.HelpText)
}
