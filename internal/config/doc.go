// Package config loads and validates the CLI configuration.
//
// Configuration lives at ~/.accomplish/config.toml as profile-keyed TOML
// tables; the active profile is selected with --profile or
// ACCOMPLISH_PROFILE. The package also owns the directory-to-project
// mappings: per-directory .accomplish.toml files discovered by walking
// toward the filesystem root, and the global directories.toml map.
package config
