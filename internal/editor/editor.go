// Package editor composes worklog entry text in the user's editor.
package editor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Template seeds the temporary file when composing a fresh entry.
const Template = "# Enter your worklog entry below\n# Lines starting with # will be ignored\n\n"

// Compose opens the preferred editor on a temporary file seeded with initial
// content, waits for it to close, and returns the edited text with comment
// lines removed.
func Compose(initial string) (string, error) {
	file, err := os.CreateTemp("", "accomplish-entry-*.md")
	if err != nil {
		return "", fmt.Errorf("create temporary file: %w", err)
	}
	path := file.Name()
	defer os.Remove(path)

	if _, err := file.WriteString(initial); err != nil {
		file.Close()
		return "", fmt.Errorf("seed temporary file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close temporary file: %w", err)
	}

	editor := preferredEditor()
	args := []string{path}
	// VSCode returns immediately unless asked to wait.
	if base := filepath.Base(editor); base == "code" || base == "code-insiders" {
		args = []string{"--wait", path}
	}
	cmd := exec.Command(editor, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("editor %q: %w", editor, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read edited file: %w", err)
	}
	return StripComments(strings.TrimRight(string(data), " \t\r\n")), nil
}

func preferredEditor() string {
	if value := strings.TrimSpace(os.Getenv("VISUAL")); value != "" {
		return value
	}
	if value := strings.TrimSpace(os.Getenv("EDITOR")); value != "" {
		return value
	}
	for _, candidate := range []string{"nano", "vim", "vi"} {
		if _, err := exec.LookPath(candidate); err == nil {
			return candidate
		}
	}
	return "vi"
}

// StripComments removes lines whose first non-blank character is '#'.
func StripComments(content string) string {
	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), "#") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
