// Package extract finds code in free-form markdown replies so it can be
// applied back to the editor buffer.
package extract

import (
	"regexp"
	"strings"

	"github.com/Rorical/CodeAssist/internal/models"
)

// fenceRegex matches a triple-backtick block whose fences start a line,
// indented by at most three spaces. Group 1 is the info string on the opening
// fence, group 2 the interior up to the first closing fence line.
var fenceRegex = regexp.MustCompile("(?ms)^[ \\t]{0,3}```([^\\n`]*)\\n(.*?)^[ \\t]{0,3}```[ \\t\\r]*$")

// Block is one fenced code block in document order.
type Block struct {
	Language string // first word of the info string, empty when untagged
	Code     string // interior with surrounding whitespace trimmed
}

// Blocks returns every fenced block in text, in document order.
func Blocks(text string) []Block {
	matches := fenceRegex.FindAllStringSubmatch(text, -1)
	blocks := make([]Block, 0, len(matches))
	for _, m := range matches {
		lang := ""
		if fields := strings.Fields(m[1]); len(fields) > 0 {
			lang = fields[0]
		}
		blocks = append(blocks, Block{
			Language: lang,
			Code:     strings.TrimSpace(m[2]),
		})
	}
	return blocks
}

// ExtractCode returns the first block tagged with language (case-insensitive),
// falling back to the first block of any tag. Blocks that are empty after
// trimming never count. ok is false when no block qualifies.
func ExtractCode(text, language string) (code string, ok bool) {
	var blocks []Block
	for _, b := range Blocks(text) {
		if b.Code != "" {
			blocks = append(blocks, b)
		}
	}
	if len(blocks) == 0 {
		return "", false
	}
	for _, b := range blocks {
		if language != "" && strings.EqualFold(b.Language, language) {
			return b.Code, true
		}
	}
	return blocks[0].Code, true
}

// Result is the interpreter's verdict on one reply.
type Result struct {
	Action   models.Action
	Language string // language the reply was requested for
	Code     string
	HasCode  bool
}

// Interpret decides whether a reply offers code to apply. Replies to actions
// that do not return code are never scanned.
func Interpret(action models.Action, responseText, language string) Result {
	res := Result{Action: action, Language: language}
	if !action.ReturnsCode() {
		return res
	}
	res.Code, res.HasCode = ExtractCode(responseText, language)
	return res
}
