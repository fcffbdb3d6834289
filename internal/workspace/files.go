package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxImportBytes caps the size of a file loaded into the editor.
const MaxImportBytes = 1 << 20

var ErrFileTooLarge = errors.New("file too large for the editor")

// ImportedFile is a file read into the editor buffer.
type ImportedFile struct {
	Path     string
	Code     string
	Language string // detected language, empty when the extension is unknown
}

// Import reads the file at path. A leading "~/" is expanded.
func Import(path string) (*ImportedFile, error) {
	path, err := expandHome(strings.TrimSpace(path))
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > MaxImportBytes {
		return nil, fmt.Errorf("%s: %w (%d bytes)", path, ErrFileTooLarge, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	lang, _ := DetectLanguage(path)
	return &ImportedFile{
		Path:     path,
		Code:     strings.ReplaceAll(string(data), "\r\n", "\n"),
		Language: lang,
	}, nil
}

// Export writes code to dir as code.<ext>. An existing file is never
// overwritten; a short unique suffix is added instead. The written path is
// returned.
func Export(dir, code, language string) (string, error) {
	if dir == "" {
		dir = "."
	}
	dir, err := expandHome(dir)
	if err != nil {
		return "", err
	}
	ext := ExtensionFor(language)

	path := filepath.Join(dir, "code."+ext)
	if _, err := os.Stat(path); err == nil {
		path = filepath.Join(dir, fmt.Sprintf("code-%s.%s", uuid.NewString()[:8], ext))
	}
	if err := os.WriteFile(path, []byte(code), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// WriteBack replaces the contents of an existing file.
func WriteBack(path, code string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(code), info.Mode().Perm()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
