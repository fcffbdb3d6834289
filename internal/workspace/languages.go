// Package workspace knows the supported languages and moves the editor
// buffer to and from files on disk.
package workspace

import (
	"path/filepath"
	"strings"
)

// Language is one entry of the language picker.
type Language struct {
	Value     string // wire name sent to the backend
	Label     string
	Extension string
	Color     string // badge background
	TextColor string // badge foreground
}

const DefaultLanguage = "javascript"

// FallbackExtension is used for languages outside the table.
const FallbackExtension = "txt"

var Languages = []Language{
	{Value: "javascript", Label: "JavaScript", Extension: "js", Color: "#f7df1e", TextColor: "#000000"},
	{Value: "typescript", Label: "TypeScript", Extension: "ts", Color: "#3178c6", TextColor: "#ffffff"},
	{Value: "python", Label: "Python", Extension: "py", Color: "#3776ab", TextColor: "#ffffff"},
	{Value: "java", Label: "Java", Extension: "java", Color: "#f89820", TextColor: "#ffffff"},
	{Value: "cpp", Label: "C++", Extension: "cpp", Color: "#00599c", TextColor: "#ffffff"},
	{Value: "csharp", Label: "C#", Extension: "cs", Color: "#239120", TextColor: "#ffffff"},
	{Value: "html", Label: "HTML", Extension: "html", Color: "#e34f26", TextColor: "#ffffff"},
	{Value: "css", Label: "CSS", Extension: "css", Color: "#1572b6", TextColor: "#ffffff"},
}

// extra extensions recognised on import only
var importAliases = map[string]string{
	"mjs": "javascript", "cjs": "javascript", "jsx": "javascript",
	"tsx": "typescript",
	"cc":  "cpp", "cxx": "cpp", "hpp": "cpp", "h": "cpp",
	"htm": "html",
}

func Lookup(value string) (Language, bool) {
	for _, l := range Languages {
		if l.Value == value {
			return l, true
		}
	}
	return Language{}, false
}

// ExtensionFor returns the file extension for a language value.
func ExtensionFor(value string) string {
	if l, ok := Lookup(value); ok {
		return l.Extension
	}
	return FallbackExtension
}

// DetectLanguage maps a file path to a language value by extension.
func DetectLanguage(path string) (string, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return "", false
	}
	for _, l := range Languages {
		if l.Extension == ext {
			return l.Value, true
		}
	}
	if v, ok := importAliases[ext]; ok {
		return v, true
	}
	return "", false
}

// Next steps through the language table, wrapping at both ends. An unknown
// value starts from the default language.
func Next(value string, step int) string {
	idx := 0
	for i, l := range Languages {
		if l.Value == value {
			idx = i
			break
		}
	}
	n := len(Languages)
	idx = ((idx+step)%n + n) % n
	return Languages[idx].Value
}
