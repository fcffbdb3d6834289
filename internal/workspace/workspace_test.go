package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtensionFor(t *testing.T) {
	tests := map[string]string{
		"javascript": "js",
		"typescript": "ts",
		"python":     "py",
		"java":       "java",
		"cpp":        "cpp",
		"csharp":     "cs",
		"html":       "html",
		"css":        "css",
		"rust":       "txt",
		"":           "txt",
	}
	for lang, want := range tests {
		assert.Equal(t, want, ExtensionFor(lang), lang)
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"main.py", "python", true},
		{"/src/App.TSX", "typescript", true},
		{"lib.hpp", "cpp", true},
		{"Program.cs", "csharp", true},
		{"README", "", false},
		{"notes.md", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := DetectLanguage(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNext(t *testing.T) {
	assert.Equal(t, "typescript", Next("javascript", 1))
	assert.Equal(t, "css", Next("javascript", -1))
	assert.Equal(t, "javascript", Next("css", 1))
	assert.Equal(t, "typescript", Next("unknown", 1))
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.py")
	require.NoError(t, os.WriteFile(path, []byte("print('hi')\r\n"), 0644))

	f, err := Import(path)
	require.NoError(t, err)
	assert.Equal(t, "python", f.Language)
	assert.Equal(t, "print('hi')\n", f.Code)
}

func TestImport_UnknownExtensionKeepsLanguageEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snippet.rs")
	require.NoError(t, os.WriteFile(path, []byte("fn main() {}"), 0644))

	f, err := Import(path)
	require.NoError(t, err)
	assert.Empty(t, f.Language)
}

func TestImport_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Import(filepath.Join(dir, "missing.js"))
	assert.Error(t, err)

	_, err = Import(dir)
	assert.Error(t, err)

	big := filepath.Join(dir, "big.js")
	require.NoError(t, os.WriteFile(big, make([]byte, MaxImportBytes+1), 0644))
	_, err = Import(big)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestExport(t *testing.T) {
	dir := t.TempDir()

	first, err := Export(dir, "int main() {}", "cpp")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "code.cpp"), first)

	second, err := Export(dir, "int main() { return 1; }", "cpp")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(filepath.Base(second), "code-"))
	assert.Equal(t, ".cpp", filepath.Ext(second))

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "int main() {}", string(data))
}

func TestExport_UnknownLanguage(t *testing.T) {
	path, err := Export(t.TempDir(), "x", "cobol")
	require.NoError(t, err)
	assert.Equal(t, "code.txt", filepath.Base(path))
}

func TestWriteBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.js")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0600))

	require.NoError(t, WriteBack(path, "new"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	assert.Error(t, WriteBack(filepath.Join(t.TempDir(), "missing.js"), "x"))
}
