package components

import (
	"github.com/Rorical/CodeAssist/ui/styles"
)

const KeyHelp = "tab focus · ^A apply · ^L clear chat · ^K clear editor · ^O import · ^S export · ^N/^P language · ^T/^G theme · ^Y/^X copy · F5 retry · ^C quit"

func RenderStatus(theme styles.Theme, status string, width int) string {
	content := status
	if content == "" {
		content = KeyHelp
	}
	return theme.StatusStyle(width).MaxHeight(1).Render(content)
}
