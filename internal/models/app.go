package models

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/Rorical/CodeAssist/ui/styles"
)

type Focus int

const (
	FocusEditor Focus = iota
	FocusChat
)

// AppModel represents the UI state - only local UI concerns
type AppModel struct {
	Messages   []Message       // Transcript snapshot pushed by core
	Connection ConnectionState // Backend reachability pushed by core
	Busy       bool            // An analysis round is open
	Phase      RoundPhase

	Editor    textarea.Model
	Chat      viewport.Model
	Spinner   spinner.Model
	PathInput textinput.Model
	Importing bool // PathInput is capturing a file path

	Focus    Focus
	Language string
	Theme    styles.Theme

	Status string // Status bar text
	Width  int    // Terminal width
	Height int    // Terminal height
}

// NewAppModel builds the initial UI state with code preloaded in the editor.
func NewAppModel(code, language string, theme styles.Theme) AppModel {
	editor := textarea.New()
	editor.ShowLineNumbers = true
	editor.CharLimit = 0
	editor.MaxHeight = 0
	editor.Placeholder = PlaceholderCode
	editor.SetValue(code)
	editor.Focus()

	input := textinput.New()
	input.Placeholder = "path/to/file.py"
	input.CharLimit = 1024

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return AppModel{
		Messages:   make([]Message, 0), // core pushes the transcript
		Connection: ConnectionUnknown,
		Editor:     editor,
		Chat:       viewport.New(0, 0),
		Spinner:    spin,
		PathInput:  input,
		Focus:      FocusEditor,
		Language:   language,
		Theme:      theme,
	}
}

// CanAnalyze mirrors the action buttons' enabled state: no open round and
// the backend not known to be down.
func (m *AppModel) CanAnalyze() bool {
	return !m.Busy && m.Connection != ConnectionDisconnected
}

// LastCodeMessage returns the newest ai message carrying extracted code.
func (m *AppModel) LastCodeMessage() (Message, bool) {
	for i := len(m.Messages) - 1; i >= 0; i-- {
		if m.Messages[i].Role == RoleAI && m.Messages[i].HasCode {
			return m.Messages[i], true
		}
	}
	return Message{}, false
}

// LastAIMessage returns the newest ai message.
func (m *AppModel) LastAIMessage() (Message, bool) {
	for i := len(m.Messages) - 1; i >= 0; i-- {
		if m.Messages[i].Role == RoleAI {
			return m.Messages[i], true
		}
	}
	return Message{}, false
}
