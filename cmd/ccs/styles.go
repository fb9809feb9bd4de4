package main

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	pinStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	tagStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	projectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// initColorProfile pins the lipgloss color profile so output looks the
// same inside the selector's preview pane as in a plain terminal.
// CCS_COLOR overrides detection: truecolor, 256, 16, none.
func initColorProfile() {
	switch strings.ToLower(os.Getenv("CCS_COLOR")) {
	case "truecolor", "true", "24bit":
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	case "256", "ansi256":
		lipgloss.SetColorProfile(termenv.ANSI256)
		return
	case "16", "ansi", "basic":
		lipgloss.SetColorProfile(termenv.ANSI)
		return
	case "none", "off", "ascii":
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	if ct := os.Getenv("COLORTERM"); ct == "truecolor" || ct == "24bit" {
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}
	lipgloss.SetColorProfile(termenv.ANSI256)
}
