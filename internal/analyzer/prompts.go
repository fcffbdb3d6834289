package analyzer

import (
	"fmt"

	"github.com/Rorical/CodeAssist/internal/models"
)

var promptTemplates = map[models.Action]string{
	models.ActionExplain: `You are a helpful coding assistant. Explain what the following %[1]s code does.

Code:
` + "```%[1]s\n%[2]s\n```" + `

Cover:
1. A short overview of the code's purpose
2. The role of its key parts
3. Notable patterns or techniques

Keep it clear and beginner friendly.`,

	models.ActionFindBugs: `You are an expert code reviewer. Find bugs, errors and potential issues in the following %[1]s code.

Code:
` + "```%[1]s\n%[2]s\n```" + `

Cover:
1. Each bug or error you find
2. Why it is a problem
3. A suggested fix, with the corrected code in a single fenced %[1]s block

If there are no bugs, say so and add general quality observations.`,

	models.ActionImprove: `You are a senior software engineer. Suggest improvements for the following %[1]s code.

Code:
` + "```%[1]s\n%[2]s\n```" + `

Cover:
1. Code quality improvements
2. Performance optimizations where they apply
3. Best practice recommendations
4. The improved version of the code in a single fenced %[1]s block

Keep the suggestions practical.`,
}

// BuildPrompt renders the instruction sent to a chat model for req.
func BuildPrompt(req AnalysisRequest) (string, error) {
	tmpl, ok := promptTemplates[req.Action]
	if !ok {
		return "", &ValidationError{Reason: "Invalid action: " + string(req.Action)}
	}
	return fmt.Sprintf(tmpl, req.Language, req.Code), nil
}
