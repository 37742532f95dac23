// Package logging builds the slog loggers used across the CLI and defines
// the standardized attribute helpers and field names. Console output renders
// one human-readable line per record with the component as a message prefix;
// JSON output is available for scripting.
package logging
