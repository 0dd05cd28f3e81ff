package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorLabel     = lipgloss.Color("#228B22") // forest green
	colorValue     = lipgloss.Color("#37474f") // slate
	colorPrimary   = lipgloss.Color("62")      // Purple
	colorSecondary = lipgloss.Color("241")     // Gray
	colorMuted     = lipgloss.Color("240")     // Darker gray
	colorHighlight = lipgloss.Color("212")     // Pink
)

// TitleStyle for the application header.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorLabel).
	Padding(0, 1)

// SourceStyle for the dataset source next to the title.
var SourceStyle = lipgloss.NewStyle().
	Foreground(colorMuted)

// FieldLabel style for form field names.
var FieldLabel = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Width(14)

// FocusedLabel style for the field that has focus.
var FocusedLabel = FieldLabel.
	Foreground(colorHighlight).
	Bold(true)

// ChoiceStyle for the current value of a choice field.
var ChoiceStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255"))

// ChoiceArrow style for the < > hints around a focused choice.
var ChoiceArrow = lipgloss.NewStyle().
	Foreground(colorHighlight)

// Button style for the Run button.
var Button = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 2).
	MarginTop(1)

// FocusedButton style for the Run button with focus.
var FocusedButton = Button.
	Background(colorPrimary).
	Bold(true)

// ReportLabel style for fact keys in the report.
var ReportLabel = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorLabel)

// ReportValue style for fact values in the report.
var ReportValue = lipgloss.NewStyle().
	Foreground(colorValue)

// ReportPanel frames the report.
var ReportPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorLabel).
	Padding(0, 1).
	MarginTop(1)

// NoMatchStyle for the message shown when nothing was identified.
var NoMatchStyle = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Italic(true)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("196")).
	Bold(true).
	Padding(0, 1)

// DebugPanel frames the debug overlay.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(1, 2)

// DebugHeaderStyle for section headers inside the debug overlay.
var DebugHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)
