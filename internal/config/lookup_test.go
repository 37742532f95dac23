package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLookupProjectForDirFindsLocalConfigInAncestor(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	if err := WriteLocalConfig(root, "backend"); err != nil {
		t.Fatalf("WriteLocalConfig error: %v", err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	project, ok := LookupProjectForDir(nested)
	if !ok || project != "backend" {
		t.Fatalf("expected backend mapping, got %q ok=%v", project, ok)
	}
}

func TestLookupProjectForDirFallsBackToGlobalMap(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	workdir := t.TempDir()

	dirs, err := LoadDirectories("")
	if err != nil {
		t.Fatalf("LoadDirectories error: %v", err)
	}
	entry := DirectoryEntry{ProjectIdentifier: "infra", DirectoryType: "git", GitRemote: "git@example.com:org/infra.git"}
	if err := dirs.Set(workdir, entry); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	project, ok := LookupProjectForDir(workdir)
	if !ok || project != "infra" {
		t.Fatalf("expected infra mapping, got %q ok=%v", project, ok)
	}
}

func TestLookupProjectForDirMissingMapping(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if project, ok := LookupProjectForDir(t.TempDir()); ok {
		t.Fatalf("expected no mapping, got %q", project)
	}
}

func TestDirectoriesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "directories.toml")

	dirs, err := LoadDirectories(path)
	if err != nil {
		t.Fatalf("LoadDirectories error: %v", err)
	}
	if err := dirs.Set("/work/api", DirectoryEntry{ProjectIdentifier: "api", DirectoryType: "git"}); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	reloaded, err := LoadDirectories(path)
	if err != nil {
		t.Fatalf("reload error: %v", err)
	}
	entry, ok := reloaded.Entry("/work/api")
	if !ok || entry.ProjectIdentifier != "api" {
		t.Fatalf("unexpected entry %+v ok=%v", entry, ok)
	}
}
