package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme bundles palette + symbols + box border.
// All UI helpers pull from `current`.
type Theme struct {
	Name                                 string
	Title, Muted, Accent, Success, Error lipgloss.TerminalColor
	Border                               lipgloss.Border
	SymOK, SymFail                       string
}

var (
	current = classic()
	// profile is the detected color profile, restored when leaving mono.
	profile = lipgloss.ColorProfile()
)

func classic() Theme {
	return Theme{
		Name:  "classic",
		Title: lipgloss.NoColor{}, Muted: lipgloss.Color("8"), Accent: lipgloss.Color("12"),
		Success: lipgloss.Color("42"), Error: lipgloss.Color("9"),
		Border: lipgloss.NormalBorder(),
		SymOK:  "✔", SymFail: "✖",
	}
}

// SetTheme switches the palette. Unknown names fall back to classic.
func SetTheme(name string) {
	name = strings.ToLower(name)
	if name == "mono" {
		lipgloss.SetColorProfile(termenv.Ascii)
	} else {
		lipgloss.SetColorProfile(profile)
	}
	switch name {
	case "neon":
		current = Theme{
			Name:  "neon",
			Title: lipgloss.Color("13"), // bright magenta
			Muted: lipgloss.Color("8"), Accent: lipgloss.Color("14"),
			Success: lipgloss.Color("10"), Error: lipgloss.Color("9"),
			Border: lipgloss.RoundedBorder(),
			SymOK:  "✔", SymFail: "✖",
		}
	case "mono":
		current = Theme{
			Name:  "mono",
			Title: lipgloss.NoColor{}, Muted: lipgloss.NoColor{}, Accent: lipgloss.NoColor{},
			Success: lipgloss.NoColor{}, Error: lipgloss.NoColor{},
			Border: lipgloss.ASCIIBorder(),
			SymOK:  "ok", SymFail: "error:",
		}
	default:
		current = classic()
	}
	refreshStyles()
}

// Current exposes what renderers need.
func Current() Theme { return current }
