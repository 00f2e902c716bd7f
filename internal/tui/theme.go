package tui

import "github.com/charmbracelet/lipgloss"

// Color palette for the rejoice terminal UI
var (
	// Primary colors
	ColorPrimary   = lipgloss.Color("#E11D48") // Rose - recording accent
	ColorSecondary = lipgloss.Color("#0EA5E9") // Sky blue - secondary accent

	// Status colors
	ColorSuccess = lipgloss.Color("#16A34A") // Green
	ColorError   = lipgloss.Color("#DC2626") // Red
	ColorWarning = lipgloss.Color("#D97706") // Amber

	// Text colors
	ColorText   = lipgloss.Color("#FAFAF9") // Bright white
	ColorMuted  = lipgloss.Color("#A8A29E") // Warm gray
	ColorSubtle = lipgloss.Color("#78716C") // Darker gray
)
