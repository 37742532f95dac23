package config

const (
	defaultProfileName    = "default"
	defaultAPIBase        = "https://accomplish.dev"
	defaultClientID       = "90w0AXnlNgnh2XBJdexYjw"
	defaultCredentialsDir = "~/.accomplish"

	envProfile  = "ACCOMPLISH_PROFILE"
	envAPIBase  = "ACCOMPLISH_API_BASE"
	envClientID = "ACCOMPLISH_CLIENT_ID"
)

// Default returns a Profile populated with repository defaults.
func Default() Profile {
	return Profile{
		APIBase:        defaultAPIBase,
		ClientID:       defaultClientID,
		CredentialsDir: defaultCredentialsDir,
	}
}
