package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/CodeAssist/internal/models"
	"github.com/Rorical/CodeAssist/internal/workspace"
	"github.com/Rorical/CodeAssist/ui/styles"
)

const Title = "CodeAssist"

// ConnectionLabel is the text of the connection badge.
func ConnectionLabel(state models.ConnectionState) string {
	switch state {
	case models.ConnectionConnected:
		return "● connected"
	case models.ConnectionDisconnected:
		return "○ disconnected"
	}
	return "… checking"
}

func RenderHeader(theme styles.Theme, width int, language string, connection models.ConnectionState) string {
	title := theme.HeaderStyle(0).Render(Title)

	lang, ok := workspace.Lookup(language)
	if !ok {
		lang = workspace.Language{Label: strings.ToUpper(language), Color: "#666666", TextColor: "#ffffff"}
	}
	badge := theme.BadgeStyle(lang.TextColor, lang.Color).Render(lang.Label)

	var conn string
	switch connection {
	case models.ConnectionDisconnected:
		conn = theme.DisconnectedStyle().Render(ConnectionLabel(connection))
	case models.ConnectionConnected:
		conn = theme.ConnectedStyle().Render(ConnectionLabel(connection))
	default:
		conn = theme.TimeStyle().Render(ConnectionLabel(connection))
	}

	right := lipgloss.JoinHorizontal(lipgloss.Center, badge, " ", conn, " ")
	gap := width - lipgloss.Width(title) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, title, strings.Repeat(" ", gap), right)
}
