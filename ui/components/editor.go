package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/CodeAssist/ui/styles"
)

// RenderPanel frames body in a bordered box with a title line.
func RenderPanel(theme styles.Theme, title, body string, width, height int, focused bool) string {
	head := theme.HintStyle().Bold(true).Render(title)
	return theme.PanelStyle(width, height, focused).Render(lipgloss.JoinVertical(lipgloss.Left, head, body))
}

// RenderPathPrompt draws the import prompt shown above the status bar.
func RenderPathPrompt(theme styles.Theme, inputView string, width int) string {
	return theme.PromptStyle().Width(width - 4).Render("Import file: " + inputView)
}
