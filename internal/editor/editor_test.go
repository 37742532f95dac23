package editor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStripComments(t *testing.T) {
	input := "# header\nreal work\n  # indented comment\nmore work\n"
	got := StripComments(input)
	if strings.Contains(got, "#") {
		t.Fatalf("expected comments removed, got %q", got)
	}
	if !strings.Contains(got, "real work") || !strings.Contains(got, "more work") {
		t.Fatalf("expected content preserved, got %q", got)
	}
}

func TestStripCommentsTemplateOnlyIsEmpty(t *testing.T) {
	if got := strings.TrimSpace(StripComments(Template)); got != "" {
		t.Fatalf("expected empty result from template, got %q", got)
	}
}

func TestComposeRunsEditor(t *testing.T) {
	script := filepath.Join(t.TempDir(), "fake-editor.sh")
	contents := "#!/bin/sh\nprintf 'shipped the feature\\n' >> \"$1\"\n"
	if err := os.WriteFile(script, []byte(contents), 0o755); err != nil {
		t.Fatalf("write fake editor: %v", err)
	}
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", script)

	got, err := Compose(Template)
	if err != nil {
		t.Fatalf("Compose error: %v", err)
	}
	if !strings.Contains(got, "shipped the feature") {
		t.Fatalf("expected appended entry text, got %q", got)
	}
	if strings.Contains(got, "#") {
		t.Fatalf("expected template comments stripped, got %q", got)
	}
}

func TestComposeFailingEditorSurfacesError(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "false")

	if _, err := Compose(""); err == nil {
		t.Fatal("expected error from failing editor")
	}
}
