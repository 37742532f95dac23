package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"
)

// DirectoryEntry maps one absolute directory path to a project.
type DirectoryEntry struct {
	ProjectIdentifier string `toml:"project_identifier"`
	DirectoryType     string `toml:"directory_type"`
	GitRemote         string `toml:"git_remote,omitempty"`
}

// Directories is the global directory-to-project map stored at
// ~/.accomplish/directories.toml.
type Directories struct {
	path    string
	Entries map[string]DirectoryEntry `toml:"directories"`
}

// DefaultDirectoriesPath returns the absolute path of the global map.
func DefaultDirectoriesPath() (string, error) {
	return expandPath("~/.accomplish/directories.toml")
}

// LoadDirectories reads the global map from path, or from the default
// location when path is empty. A missing file yields an empty map.
func LoadDirectories(path string) (*Directories, error) {
	if path == "" {
		defaultPath, err := DefaultDirectoriesPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}
	dirs := &Directories{path: path, Entries: map[string]DirectoryEntry{}}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return dirs, nil
		}
		return nil, fmt.Errorf("read directories config: %w", err)
	}
	if err := toml.Unmarshal(data, dirs); err != nil {
		return nil, fmt.Errorf("parse directories config: %w", err)
	}
	if dirs.Entries == nil {
		dirs.Entries = map[string]DirectoryEntry{}
	}
	return dirs, nil
}

// Entry looks up the mapping for an absolute directory path.
func (d *Directories) Entry(dir string) (DirectoryEntry, bool) {
	entry, ok := d.Entries[dir]
	return entry, ok
}

// Set records a mapping and persists the file. Writes are serialized with an
// advisory lock so concurrent CLI invocations do not clobber each other.
func (d *Directories) Set(dir string, entry DirectoryEntry) error {
	d.Entries[dir] = entry
	return d.save()
}

func (d *Directories) save() error {
	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	lock := flock.New(d.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock directories config: %w", err)
	}
	defer func() {
		_ = lock.Unlock()
	}()
	data, err := toml.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode directories config: %w", err)
	}
	if err := os.WriteFile(d.path, data, 0o644); err != nil {
		return fmt.Errorf("write directories config: %w", err)
	}
	return nil
}
