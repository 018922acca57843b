package support

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// AppName is shown in the prefix of every user-facing line.
const AppName = "publicist"

// Prefix renders "[publicist]: <message>" with a colored tool name.
func Prefix(message string) string {
	name := lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Render(AppName)
	return fmt.Sprintf("[%s]: %s", name, message)
}

// Accent highlights a value such as a version.
func Accent(value string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Render(value)
}

// Alert renders a failure notice.
func Alert(message string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true).Render(message)
}
