package ui

import "github.com/charmbracelet/lipgloss"

const (
	ColorHeaderFg = lipgloss.Color("252") // Light Gray
	ColorHeaderBg = lipgloss.Color("62")  // Purple

	ColorFooterFg = lipgloss.Color("244") // Dim gray

	ColorNormalFg     = lipgloss.Color("250") // Off-white
	ColorNormalDescFg = lipgloss.Color("244")

	ColorSelectedFg     = lipgloss.Color("255") // White
	ColorSelectedBg     = lipgloss.Color("56")  // Dark Pink/Purple
	ColorSelectedDescFg = lipgloss.Color("248")

	ColorProgress = lipgloss.Color("40")  // Green
	ColorError    = lipgloss.Color("196") // Red
	ColorWarning  = lipgloss.Color("214") // Orange/Yellow
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorHeaderFg).
			Background(ColorHeaderBg).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorFooterFg).
			Padding(0, 1)

	// ProgressStyle renders stage and notice lines.
	ProgressStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorProgress)
	// ErrorStyle renders fatal errors and per-file failures.
	ErrorStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorError)
	WarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
)
