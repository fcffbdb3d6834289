package update

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/CodeAssist/internal/eventbus"
	"github.com/Rorical/CodeAssist/internal/models"
	"github.com/Rorical/CodeAssist/internal/workspace"
)

// HandleKeyMsg handles keyboard input. Global shortcuts win; everything
// else goes to the focused panel.
func HandleKeyMsg(appModel *models.AppModel, keyMsg tea.KeyMsg, env *Env) tea.Cmd {
	if appModel.Importing {
		return handleImportKey(appModel, keyMsg, env)
	}

	switch keyMsg.String() {
	case "ctrl+c":
		return tea.Quit
	case "ctrl+e":
		return analyze(appModel, models.ActionExplain, env)
	case "ctrl+b":
		return analyze(appModel, models.ActionFindBugs, env)
	case "ctrl+r":
		return analyze(appModel, models.ActionImprove, env)
	case "ctrl+a":
		send(appModel, env, eventbus.ApplyCodeEvent{})
		return nil
	case "ctrl+l":
		send(appModel, env, eventbus.ClearChatEvent{})
		return nil
	case "ctrl+k":
		appModel.Editor.Reset()
		appModel.Status = "Editor cleared"
		return nil
	case "ctrl+o":
		appModel.Importing = true
		appModel.PathInput.Reset()
		Resize(appModel)
		return appModel.PathInput.Focus()
	case "ctrl+s":
		exportBuffer(appModel, env)
		return nil
	case "ctrl+n":
		setLanguage(appModel, workspace.Next(appModel.Language, 1), env)
		return nil
	case "ctrl+p":
		setLanguage(appModel, workspace.Next(appModel.Language, -1), env)
		return nil
	case "ctrl+t":
		appModel.Theme = appModel.Theme.ToggleMode()
		RefreshChat(appModel, env)
		savePreferences(appModel, env)
		return nil
	case "ctrl+g":
		appModel.Theme = appModel.Theme.NextColor()
		RefreshChat(appModel, env)
		savePreferences(appModel, env)
		return nil
	case "ctrl+y":
		msg, ok := appModel.LastAIMessage()
		if !ok {
			appModel.Status = "No AI message to copy"
			return nil
		}
		copyText(appModel, env, msg.Content, "AI message")
		return nil
	case "ctrl+x":
		copyText(appModel, env, appModel.Editor.Value(), "editor contents")
		return nil
	case "f5":
		send(appModel, env, eventbus.ProbeEvent{})
		appModel.Status = "Checking backend..."
		return nil
	case "tab":
		toggleFocus(appModel)
		return nil
	}

	var cmd tea.Cmd
	if appModel.Focus == models.FocusEditor {
		appModel.Editor, cmd = appModel.Editor.Update(keyMsg)
	} else {
		appModel.Chat, cmd = appModel.Chat.Update(keyMsg)
	}
	return cmd
}

func analyze(appModel *models.AppModel, action models.Action, env *Env) tea.Cmd {
	if !appModel.CanAnalyze() {
		if appModel.Busy {
			appModel.Status = "Wait for the current analysis to finish"
		} else {
			appModel.Status = "Backend unreachable, press F5 to retry"
		}
		return nil
	}
	send(appModel, env, eventbus.AnalyzeEvent{
		Action:   action,
		Code:     appModel.Editor.Value(),
		Language: appModel.Language,
	})
	savePreferences(appModel, env)
	return nil
}

func send(appModel *models.AppModel, env *Env, event eventbus.UIEvent) {
	if err := env.Bus.SendToCore(event); err != nil {
		appModel.Status = "Error sending event: " + err.Error()
	}
}

func setLanguage(appModel *models.AppModel, language string, env *Env) {
	appModel.Language = language
	if l, ok := workspace.Lookup(language); ok {
		appModel.Status = "Language: " + l.Label
	}
	savePreferences(appModel, env)
}

func toggleFocus(appModel *models.AppModel) {
	if appModel.Focus == models.FocusEditor {
		appModel.Focus = models.FocusChat
		appModel.Editor.Blur()
		return
	}
	appModel.Focus = models.FocusEditor
	appModel.Editor.Focus()
}

func copyText(appModel *models.AppModel, env *Env, text, what string) {
	if err := env.Clipboard(text); err != nil {
		appModel.Status = "Clipboard unavailable: " + err.Error()
		return
	}
	appModel.Status = "Copied " + what + " to clipboard"
}

func exportBuffer(appModel *models.AppModel, env *Env) {
	path, err := workspace.Export(env.ExportDir, appModel.Editor.Value(), appModel.Language)
	if err != nil {
		appModel.Status = "Export failed: " + err.Error()
		return
	}
	appModel.Status = "Saved " + path
	send(appModel, env, eventbus.NoticeEvent{Content: "Code saved to " + path})
}

func handleImportKey(appModel *models.AppModel, keyMsg tea.KeyMsg, env *Env) tea.Cmd {
	switch keyMsg.Type {
	case tea.KeyCtrlC:
		return tea.Quit
	case tea.KeyEsc:
		closeImport(appModel)
		appModel.Status = "Import cancelled"
		return nil
	case tea.KeyEnter:
		path := strings.TrimSpace(appModel.PathInput.Value())
		closeImport(appModel)
		if path == "" {
			appModel.Status = "Import cancelled"
			return nil
		}
		importFile(appModel, path, env)
		return nil
	}

	var cmd tea.Cmd
	appModel.PathInput, cmd = appModel.PathInput.Update(keyMsg)
	return cmd
}

func closeImport(appModel *models.AppModel) {
	appModel.Importing = false
	appModel.PathInput.Blur()
	Resize(appModel)
}

func importFile(appModel *models.AppModel, path string, env *Env) {
	f, err := workspace.Import(path)
	if err != nil {
		appModel.Status = "Import failed: " + err.Error()
		return
	}
	appModel.Editor.SetValue(f.Code)
	if f.Language != "" {
		appModel.Language = f.Language
	}
	appModel.Status = "Loaded " + f.Path
	send(appModel, env, eventbus.NoticeEvent{Content: "Loaded " + f.Path + " into the editor"})
	savePreferences(appModel, env)
}
