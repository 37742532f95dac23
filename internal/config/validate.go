package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	parsed, err := url.Parse(c.APIBase)
	if err != nil || parsed.Host == "" {
		return fmt.Errorf("api_base %q is not a valid URL", c.APIBase)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("api_base %q must use http or https", c.APIBase)
	}
	if c.ClientID == "" {
		return errors.New("client_id must be set")
	}
	if c.CredentialsDir == "" {
		return errors.New("credentials_dir must be set")
	}
	return nil
}
