package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadResolvesProfile(t *testing.T) {
	path := writeConfig(t, `
[default]
api_base = "https://accomplish.dev"
client_id = "cli-default"
credentials_dir = "/tmp/creds"

[staging]
api_base = "https://staging.accomplish.dev/"
client_id = "cli-staging"
credentials_dir = "/tmp/creds-staging"
default_project = "infra"
`)

	cfg, exists, err := Load(path, "staging")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be reported as existing")
	}
	if cfg.Profile != "staging" {
		t.Fatalf("unexpected profile: %q", cfg.Profile)
	}
	if cfg.APIBase != "https://staging.accomplish.dev" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.APIBase)
	}
	if cfg.ClientID != "cli-staging" || cfg.DefaultProject != "infra" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadUnknownProfileFails(t *testing.T) {
	path := writeConfig(t, `
[default]
api_base = "https://accomplish.dev"
client_id = "cli"
credentials_dir = "/tmp/creds"
`)

	if _, _, err := Load(path, "prod"); err == nil || !strings.Contains(err.Error(), "prod") {
		t.Fatalf("expected unknown-profile error, got %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, exists, err := Load(filepath.Join(t.TempDir(), "config.toml"), "")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if cfg.APIBase != defaultAPIBase || cfg.ClientID != defaultClientID {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadProfileFromEnv(t *testing.T) {
	path := writeConfig(t, `
[work]
api_base = "https://work.accomplish.dev"
client_id = "cli-work"
credentials_dir = "/tmp/creds"
`)
	t.Setenv(envProfile, "work")

	cfg, _, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Profile != "work" || cfg.ClientID != "cli-work" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
[default]
api_base = "https://accomplish.dev"
client_id = "cli"
credentials_dir = "/tmp/creds"
`)
	t.Setenv(envAPIBase, "https://override.accomplish.dev")
	t.Setenv(envClientID, "cli-override")

	cfg, _, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.APIBase != "https://override.accomplish.dev" || cfg.ClientID != "cli-override" {
		t.Fatalf("expected env overrides applied, got %+v", cfg)
	}
}

func TestLoadExpandsCredentialsDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := writeConfig(t, `
[default]
api_base = "https://accomplish.dev"
client_id = "cli"
credentials_dir = "~/.accomplish"
`)

	cfg, _, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	want := filepath.Join(home, ".accomplish")
	if cfg.CredentialsDir != want {
		t.Fatalf("expected %q, got %q", want, cfg.CredentialsDir)
	}
	if got := cfg.TokenPath(); got != filepath.Join(want, "default", "token") {
		t.Fatalf("unexpected token path %q", got)
	}
}

func TestLoadRejectsInvalidAPIBase(t *testing.T) {
	path := writeConfig(t, `
[default]
api_base = "not a url"
client_id = "cli"
credentials_dir = "/tmp/creds"
`)

	if _, _, err := Load(path, ""); err == nil {
		t.Fatal("expected validation error for bad api_base")
	}
}

func TestCreateSampleWritesParsableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample error: %v", err)
	}

	cfg, exists, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load of sample failed: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.APIBase != defaultAPIBase {
		t.Fatalf("unexpected sample api_base %q", cfg.APIBase)
	}
}
