package render

import "github.com/charmbracelet/lipgloss"

// Colors for the overlay chrome.
var (
	Primary      = lipgloss.Color("212")
	Muted        = lipgloss.Color("241")
	BgSecondary  = lipgloss.Color("235")
	BorderNormal = lipgloss.Color("240")
)

// Popup box styles.
var (
	PopupBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderNormal).
			Background(BgSecondary).
			Padding(0, 2)

	// PopupBoxFaint renders a popup mid-fade: same box, muted content.
	PopupBoxFaint = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Muted).
			Foreground(Muted).
			Padding(0, 2)

	PopupTitle = lipgloss.NewStyle().Bold(true).Foreground(Primary)
)
