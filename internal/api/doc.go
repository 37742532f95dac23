// Package api implements the authenticated transport against the worklog
// backend: single-shot JSON calls, the long-lived event-stream open, and the
// error taxonomy the rest of the CLI classifies against.
//
// Every request carries the CLI User-Agent and a fresh X-Request-ID so
// server-side logs can be correlated with a single invocation. HTTP status
// codes are mapped onto sentinel errors (ErrValidation, ErrUnauthorized,
// ErrNotFound, ErrRateLimited, ErrServer, ErrTransport) once, here, so
// callers never inspect status codes themselves.
package api
