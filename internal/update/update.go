package update

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/CodeAssist/internal/eventbus"
	"github.com/Rorical/CodeAssist/internal/models"
	"github.com/Rorical/CodeAssist/internal/storage"
	"github.com/Rorical/CodeAssist/ui/components"
)

// CoreEventMsg wraps core events for Bubble Tea
type CoreEventMsg struct {
	Event eventbus.CoreEvent
}

// Layout rows outside the two panels: header, actions, status.
const chromeRows = 3

// HandleCoreEvent applies a core event to the UI state.
func HandleCoreEvent(appModel *models.AppModel, coreEventMsg CoreEventMsg, env *Env) tea.Cmd {
	switch event := coreEventMsg.Event.(type) {
	case eventbus.StateUpdateEvent:
		wasBusy := appModel.Busy
		appModel.Messages = event.Messages
		appModel.Connection = event.Connection
		appModel.Phase = event.Phase
		appModel.Busy = event.Busy()
		RefreshChat(appModel, env)

		switch {
		case appModel.Busy:
			appModel.Status = "Waiting for the AI (" + event.Phase.String() + ")"
		case event.Error != nil:
			appModel.Status = "Last error: " + event.Error.Error()
		case appModel.Connection == models.ConnectionDisconnected:
			appModel.Status = "Backend unreachable, press F5 to retry"
		default:
			appModel.Status = ""
		}

		if appModel.Busy && !wasBusy {
			return appModel.Spinner.Tick
		}
	case eventbus.EditorReplaceEvent:
		appModel.Editor.SetValue(event.Code)
		appModel.Status = "Code applied to editor"
		savePreferences(appModel, env)
	}
	return nil
}

// HandleSpinnerTick advances the spinner while a round is open and lets it
// stop otherwise.
func HandleSpinnerTick(appModel *models.AppModel, tick spinner.TickMsg) tea.Cmd {
	if !appModel.Busy {
		return nil
	}
	var cmd tea.Cmd
	appModel.Spinner, cmd = appModel.Spinner.Update(tick)
	return cmd
}

func HandleWindowSizeMsg(appModel *models.AppModel, sizeMsg tea.WindowSizeMsg, env *Env) {
	appModel.Width = sizeMsg.Width
	appModel.Height = sizeMsg.Height
	Resize(appModel)
	RefreshChat(appModel, env)
}

// PanelSizes splits the terminal between editor and chat panels.
func PanelSizes(appModel *models.AppModel) (editorWidth, chatWidth, height int) {
	height = appModel.Height - chromeRows
	if appModel.Importing {
		height -= 3
	}
	if height < 5 {
		height = 5
	}
	editorWidth = appModel.Width * 55 / 100
	chatWidth = appModel.Width - editorWidth
	return editorWidth, chatWidth, height
}

// Resize fits the editor and viewport inside their panel borders.
func Resize(appModel *models.AppModel) {
	editorWidth, chatWidth, height := PanelSizes(appModel)
	// 2 border columns, 2 border rows plus a title row
	appModel.Editor.SetWidth(max(editorWidth-2, 10))
	appModel.Editor.SetHeight(max(height-3, 1))
	appModel.Chat.Width = max(chatWidth-2, 10)
	appModel.Chat.Height = max(height-3, 1)
	appModel.PathInput.Width = max(appModel.Width-20, 10)
}

// RefreshChat re-renders the transcript into the viewport and scrolls to
// the newest message.
func RefreshChat(appModel *models.AppModel, env *Env) {
	if appModel.Chat.Width == 0 {
		return
	}
	appModel.Chat.SetContent(components.RenderMessages(
		appModel.Messages, appModel.Theme, appModel.Chat.Width, env.Markdown, appModel.Language))
	appModel.Chat.GotoBottom()
}

// Preferences snapshots what is remembered between sessions.
func Preferences(appModel *models.AppModel) storage.Preferences {
	return storage.Preferences{
		Code:       appModel.Editor.Value(),
		Language:   appModel.Language,
		ThemeMode:  appModel.Theme.Mode,
		ThemeColor: appModel.Theme.Color,
	}
}

func savePreferences(appModel *models.AppModel, env *Env) {
	if err := env.Bus.SendToCore(eventbus.PreferencesEvent{Preferences: Preferences(appModel)}); err != nil {
		appModel.Status = "Could not save preferences: " + err.Error()
	}
}
