package app

import (
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/CodeAssist/internal/dispatcher"
	"github.com/Rorical/CodeAssist/internal/models"
	"github.com/Rorical/CodeAssist/internal/update"
	"github.com/Rorical/CodeAssist/ui/components"
)

// AppModel adapts the UI state to tea.Model.
type AppModel struct {
	appModel   models.AppModel
	dispatcher *dispatcher.EventDispatcher
	env        *update.Env
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.dispatcher.ListenForCoreEvents(),
	)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle core events and continue listening
	if coreEvent, ok := msg.(update.CoreEventMsg); ok {
		cmd := update.HandleCoreEvent(&m.appModel, coreEvent, m.env)
		return m, tea.Batch(cmd, m.dispatcher.ListenForCoreEvents())
	}

	cmd := update.HandleUpdate(&m.appModel, msg, m.env)
	return m, cmd
}

func (m *AppModel) View() string {
	am := &m.appModel
	if am.Width == 0 {
		return "Loading..."
	}

	editorWidth, chatWidth, height := update.PanelSizes(am)
	theme := am.Theme

	editor := components.RenderPanel(theme, "Editor", am.Editor.View(),
		editorWidth, height, am.Focus == models.FocusEditor)
	chat := components.RenderPanel(theme, "AI Assistant", am.Chat.View(),
		chatWidth, height, am.Focus == models.FocusChat)

	rows := []string{
		components.RenderHeader(theme, am.Width, am.Language, am.Connection),
		lipgloss.JoinHorizontal(lipgloss.Top, editor, chat),
		components.RenderActions(theme, am.CanAnalyze(), am.Busy, am.Spinner.View()),
	}
	if am.Importing {
		rows = append(rows, components.RenderPathPrompt(theme, am.PathInput.View(), am.Width))
	}
	rows = append(rows, components.RenderStatus(theme, am.Status, am.Width))

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
