package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if value := strings.TrimSpace(os.Getenv(envAPIBase)); value != "" {
		c.APIBase = value
	}
	if value := strings.TrimSpace(os.Getenv(envClientID)); value != "" {
		c.ClientID = value
	}

	c.APIBase = strings.TrimRight(strings.TrimSpace(c.APIBase), "/")
	if c.APIBase == "" {
		c.APIBase = defaultAPIBase
	}
	c.ClientID = strings.TrimSpace(c.ClientID)
	if c.ClientID == "" {
		c.ClientID = defaultClientID
	}
	if strings.TrimSpace(c.CredentialsDir) == "" {
		c.CredentialsDir = defaultCredentialsDir
	}
	var err error
	if c.CredentialsDir, err = expandPath(c.CredentialsDir); err != nil {
		return fmt.Errorf("credentials_dir: %w", err)
	}
	c.DefaultProject = strings.TrimSpace(c.DefaultProject)
	return nil
}
