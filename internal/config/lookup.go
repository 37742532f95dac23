package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// LocalConfigName is the per-directory project mapping file.
const LocalConfigName = ".accomplish.toml"

type localConfig struct {
	Project struct {
		DefaultProject string `toml:"default_project"`
	} `toml:"project"`
}

// LookupProjectForDir resolves the project mapped to dir: the nearest
// .accomplish.toml walking toward the filesystem root wins, then the global
// directories map. The second return reports whether a mapping was found.
func LookupProjectForDir(dir string) (string, bool) {
	for current := dir; ; {
		data, err := os.ReadFile(filepath.Join(current, LocalConfigName))
		if err == nil {
			var local localConfig
			if toml.Unmarshal(data, &local) == nil {
				if project := strings.TrimSpace(local.Project.DefaultProject); project != "" {
					return project, true
				}
			}
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	dirs, err := LoadDirectories("")
	if err != nil {
		return "", false
	}
	entry, ok := dirs.Entry(dir)
	if !ok {
		return "", false
	}
	return entry.ProjectIdentifier, true
}

// WriteLocalConfig writes dir/.accomplish.toml mapping the directory to a project.
func WriteLocalConfig(dir, project string) error {
	var local localConfig
	local.Project.DefaultProject = project
	data, err := toml.Marshal(local)
	if err != nil {
		return fmt.Errorf("encode local config: %w", err)
	}
	path := filepath.Join(dir, LocalConfigName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write local config: %w", err)
	}
	return nil
}
