package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Guardian-ish palette, adaptive for dark/light terminals
	colorPrimary   = lipgloss.AdaptiveColor{Light: "#052962", Dark: "#7DA7E8"}
	colorSecondary = lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#ABABAB"}
	colorText      = lipgloss.AdaptiveColor{Light: "#121212", Dark: "#E6E6E6"}
	colorDim       = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorAccent    = lipgloss.AdaptiveColor{Light: "#C70000", Dark: "#FF5943"}
	colorBorder    = lipgloss.AdaptiveColor{Light: "#DBDBDB", Dark: "#383838"}
	colorActiveBdr = lipgloss.AdaptiveColor{Light: "#052962", Dark: "#7DA7E8"}
	colorStatusBg  = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#16213E"}
	colorStatusFg  = lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#ABABAB"}
	colorSection   = lipgloss.AdaptiveColor{Light: "#AB0613", Dark: "#FFBAC8"}
	colorChecked   = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			PaddingLeft(1)

	headerDateStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Align(lipgloss.Right)

	subheaderStyle = lipgloss.NewStyle().
			Foreground(colorSecondary).
			PaddingLeft(1)

	listPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	listPaneActiveStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorActiveBdr)

	previewPaneStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorder)

	previewPaneActiveStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorActiveBdr)

	itemTitleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	itemSelectedStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	itemSectionStyle = lipgloss.NewStyle().
				Foreground(colorSection)

	itemTimeStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	itemBylineStyle = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Italic(true)

	previewTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPrimary).
				MarginBottom(1)

	previewMetaStyle = lipgloss.NewStyle().
				Foreground(colorSection)

	previewBylineStyle = lipgloss.NewStyle().
				Foreground(colorSecondary).
				Italic(true)

	previewBodyStyle = lipgloss.NewStyle().
				Foreground(colorText)

	previewLinkStyle = lipgloss.NewStyle().
				Foreground(colorDim).
				Italic(true)

	settingsCardStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorActiveBdr).
				Padding(1, 3)

	settingsTitleStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	settingsLabelStyle = lipgloss.NewStyle().
				Foreground(colorText)

	settingsValueStyle = lipgloss.NewStyle().
				Foreground(colorAccent)

	settingsCursorStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	settingsCheckedStyle = lipgloss.NewStyle().
				Foreground(colorChecked)

	emptyTitleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	emptyHintStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	helpCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 3)

	helpDimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	statusBarStyle = lipgloss.NewStyle().
			Background(colorStatusBg).
			Foreground(colorStatusFg).
			PaddingLeft(1).
			PaddingRight(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	searchPromptStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)
)
