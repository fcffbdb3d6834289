package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/CodeAssist/internal/models"
	"github.com/Rorical/CodeAssist/ui/styles"
)

var actionKeys = map[models.Action]string{
	models.ActionExplain:  "^E",
	models.ActionFindBugs: "^B",
	models.ActionImprove:  "^R",
}

// RenderActions draws the three action buttons. They are greyed out while
// a round is open or the backend is down; a busy round shows the spinner.
func RenderActions(theme styles.Theme, enabled, busy bool, spinnerView string) string {
	buttons := make([]string, 0, len(models.Actions)+1)
	for _, a := range models.Actions {
		buttons = append(buttons, theme.ActionStyle(enabled).Render(actionKeys[a]+" "+a.Label()))
	}
	if busy {
		buttons = append(buttons, theme.HintStyle().Render(spinnerView+" AI is typing..."))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, buttons...)
}
