package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/CodeAssist/internal/models"
)

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		language string
		want     string
		wantOK   bool
	}{
		{
			name:     "improve scenario",
			text:     "Here is better code:\n```python\ndef f():\n    return None\n```",
			language: "python",
			want:     "def f():\n    return None",
			wantOK:   true,
		},
		{
			name:     "tagged block wins over earlier other tag",
			text:     "Shell first:\n```bash\npip install x\n```\nThen:\n```python\nimport x\n```\n",
			language: "python",
			want:     "import x",
			wantOK:   true,
		},
		{
			name:     "tag match is case-insensitive",
			text:     "```JavaScript\nconsole.log(1)\n```",
			language: "javascript",
			want:     "console.log(1)",
			wantOK:   true,
		},
		{
			name:     "first tagged block wins among several",
			text:     "```java\nint a;\n```\n```java\nint b;\n```",
			language: "java",
			want:     "int a;",
			wantOK:   true,
		},
		{
			name:     "falls back to first untagged block",
			text:     "Try:\n```\nfirst()\n```\nor\n```cpp\nsecond();\n```",
			language: "python",
			want:     "first()",
			wantOK:   true,
		},
		{
			name:     "falls back to first other-tagged block",
			text:     "```ts\nlet a = 1\n```\n```\nplain\n```",
			language: "python",
			want:     "let a = 1",
			wantOK:   true,
		},
		{
			name:     "interior is trimmed",
			text:     "```css\n\n   body { margin: 0; }   \n\n```",
			language: "css",
			want:     "body { margin: 0; }",
			wantOK:   true,
		},
		{
			name:     "info string extras are ignored for matching",
			text:     "```python title=fix.py\nx = 1\n```",
			language: "python",
			want:     "x = 1",
			wantOK:   true,
		},
		{
			name:     "crlf fences",
			text:     "```csharp\r\nvar x = 1;\r\n```",
			language: "csharp",
			want:     "var x = 1;",
			wantOK:   true,
		},
		{
			name:     "no fenced block",
			text:     "Looks fine to me. Use `len(x)` instead.",
			language: "python",
			wantOK:   false,
		},
		{
			name:     "inline backticks do not open a fence",
			text:     "Wrap code in ``` fences. Fixed version:\n```python\ndef f():\n    return 1\n```",
			language: "python",
			want:     "def f():\n    return 1",
			wantOK:   true,
		},
		{
			name:     "backticks inside code do not close the fence",
			text:     "```python\nprint(\"```\")\nx = 1\n```",
			language: "python",
			want:     "print(\"```\")\nx = 1",
			wantOK:   true,
		},
		{
			name:     "indented fences",
			text:     "Fix:\n   ```go\n   x := 1\n   ```\n",
			language: "go",
			want:     "x := 1",
			wantOK:   true,
		},
		{
			name:     "empty block is not applicable",
			text:     "```python\n   \n```",
			language: "python",
			wantOK:   false,
		},
		{
			name:     "empty tagged block falls through to next block",
			text:     "```python\n```\n```\nreal()\n```",
			language: "python",
			want:     "real()",
			wantOK:   true,
		},
		{
			name:     "unterminated fence",
			text:     "```python\nprint(1)\n",
			language: "python",
			wantOK:   false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractCode(tc.text, tc.language)
			require.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBlocks_DocumentOrder(t *testing.T) {
	blocks := Blocks("a\n```go\nx\n```\nb\n```\ny\n```\n")
	require.Len(t, blocks, 2)
	assert.Equal(t, Block{Language: "go", Code: "x"}, blocks[0])
	assert.Equal(t, Block{Language: "", Code: "y"}, blocks[1])
}

func TestInterpret_ExplainNeverExtracts(t *testing.T) {
	text := "This function:\n```python\ndef f(): pass\n```"

	res := Interpret(models.ActionExplain, text, "python")

	assert.False(t, res.HasCode)
	assert.Empty(t, res.Code)
	assert.Equal(t, models.ActionExplain, res.Action)
}

func TestInterpret_CodeActions(t *testing.T) {
	text := "Fixed:\n```python\ndef f():\n    return 1\n```"

	for _, action := range []models.Action{models.ActionFindBugs, models.ActionImprove} {
		t.Run(string(action), func(t *testing.T) {
			res := Interpret(action, text, "python")
			require.True(t, res.HasCode)
			assert.Equal(t, "def f():\n    return 1", res.Code)
		})
	}
}

func TestInterpret_RecordsLanguage(t *testing.T) {
	res := Interpret(models.ActionImprove, "```go\nx := 1\n```", "go")
	assert.Equal(t, "go", res.Language)
}

func TestInterpret_NoBlockNoAffordance(t *testing.T) {
	res := Interpret(models.ActionImprove, "Nothing to improve.", "python")
	assert.False(t, res.HasCode)
}
