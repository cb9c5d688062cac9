package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // running tasks, headings
	colorGreen  = lipgloss.Color("35")  // completed tasks
	colorYellow = lipgloss.Color("220") // cancelled tasks, unplaced warnings
	colorRed    = lipgloss.Color("167") // failed tasks
	colorBlue   = lipgloss.Color("75")  // addresses, commands
	colorWhite  = lipgloss.Color("255") // queued tasks, values
	colorGray   = lipgloss.Color("245") // column headers
	colorDim    = lipgloss.Color("240") // borders, muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for run names and headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for the active view mode.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleLink for listen addresses.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for task details and paths.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for counts.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleWarning for unplaced tasks and other warnings.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints the path of a written file.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// statsLine formats layering statistics on a single line.
func statsLine(tasks, columns, passes int) string {
	parts := []string{
		StyleNumber.Render(fmt.Sprint(tasks)) + StyleDim.Render(" tasks"),
		StyleNumber.Render(fmt.Sprint(columns)) + StyleDim.Render(" columns"),
		StyleNumber.Render(fmt.Sprint(passes)) + StyleDim.Render(" passes"),
	}
	return "  " + strings.Join(parts, StyleDim.Render(" · "))
}
