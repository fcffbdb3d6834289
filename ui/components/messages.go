package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/Rorical/CodeAssist/internal/models"
	"github.com/Rorical/CodeAssist/ui/styles"
)

// previewLines caps the highlighted preview of extracted code.
const previewLines = 12

// MarkdownRenderer renders ai replies with glamour. The underlying renderer
// is rebuilt only when the theme mode or wrap width changes.
type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
	style    string
	width    int
}

func (r *MarkdownRenderer) Render(theme styles.Theme, width int, content string) string {
	if width < 20 {
		width = 20
	}
	style := theme.GlamourStyle()
	if r.renderer == nil || r.style != style || r.width != width {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return content
		}
		r.renderer, r.style, r.width = renderer, style, width
	}

	out, err := r.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}

// RenderMarkdown is a one-off render for non-interactive output.
func RenderMarkdown(content string, width int, theme styles.Theme) string {
	var r MarkdownRenderer
	return r.Render(theme, width, content)
}

// RenderMessages draws the transcript for the chat viewport. Every reply with
// extracted code gets a preview; only the newest one carries the apply hint,
// since that is the code Ctrl+A applies.
func RenderMessages(messages []models.Message, theme styles.Theme, width int, md *MarkdownRenderer, language string) string {
	var b strings.Builder

	systemStyle := theme.SystemStyle()
	userStyle := theme.UserStyle()
	assistantStyle := theme.AssistantStyle()
	timeStyle := theme.TimeStyle()

	var applyID int64
	for _, msg := range messages {
		if msg.Role == models.RoleAI && msg.HasCode {
			applyID = msg.ID
		}
	}

	for _, msg := range messages {
		stamp := timeStyle.Render(msg.Timestamp.Format("15:04"))
		switch msg.Role {
		case models.RoleSystem:
			b.WriteString(systemStyle.Width(width).Render(msg.Content))
		case models.RoleUser:
			b.WriteString(userStyle.Render("You: "+msg.Content) + " " + stamp)
		case models.RoleAI:
			head := theme.AssistantLabelStyle().Render("AI Assistant") + " " + stamp
			body := md.Render(theme, width-4, msg.Content)
			if msg.HasCode {
				lang := msg.Language
				if lang == "" {
					lang = language
				}
				body += "\n" + renderCodePreview(theme, msg.ExtractedCode, lang, msg.ID == applyID)
			}
			b.WriteString(assistantStyle.Render(head + "\n" + body))
		}
		b.WriteString("\n\n")
	}

	return b.String()
}

func renderCodePreview(theme styles.Theme, code, language string, applicable bool) string {
	lines := strings.Split(code, "\n")
	more := ""
	if len(lines) > previewLines {
		more = theme.TimeStyle().Render("  ... " + strconv.Itoa(len(lines)-previewLines) + " more lines")
		lines = lines[:previewLines]
	}
	preview := HighlightCode(strings.Join(lines, "\n"), language, theme.ChromaStyle())
	var out string
	if applicable {
		out = theme.HintStyle().Bold(true).Render("✨ Ctrl+A to apply this code to the editor") + "\n" + preview
	} else {
		out = theme.TimeStyle().Render("suggested code ("+language+")") + "\n" + preview
	}
	if more != "" {
		out += "\n" + more
	}
	return out
}
