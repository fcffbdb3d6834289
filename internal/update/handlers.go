package update

import (
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/CodeAssist/internal/eventbus"
	"github.com/Rorical/CodeAssist/internal/models"
	"github.com/Rorical/CodeAssist/ui/components"
)

// Env carries the UI's collaborators.
type Env struct {
	Bus       *eventbus.EventBus
	ExportDir string

	// Clipboard writes text to the system clipboard.
	Clipboard func(text string) error

	Markdown *components.MarkdownRenderer
}

func NewEnv(bus *eventbus.EventBus, exportDir string) *Env {
	return &Env{
		Bus:       bus,
		ExportDir: exportDir,
		Clipboard: clipboard.WriteAll,
		Markdown:  &components.MarkdownRenderer{},
	}
}

func HandleUpdate(appModel *models.AppModel, msg tea.Msg, env *Env) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return HandleKeyMsg(appModel, msg, env)
	case tea.WindowSizeMsg:
		HandleWindowSizeMsg(appModel, msg, env)
		return nil
	case spinner.TickMsg:
		return HandleSpinnerTick(appModel, msg)
	case CoreEventMsg:
		return HandleCoreEvent(appModel, msg, env)
	case tea.MouseMsg:
		var cmd tea.Cmd
		appModel.Chat, cmd = appModel.Chat.Update(msg)
		return cmd
	}

	// cursor blinks and other component-internal messages
	var cmds []tea.Cmd
	var cmd tea.Cmd
	appModel.Editor, cmd = appModel.Editor.Update(msg)
	cmds = append(cmds, cmd)
	if appModel.Importing {
		appModel.PathInput, cmd = appModel.PathInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}
