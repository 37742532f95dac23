package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldProfile is the standardized structured logging key for the active profile.
	FieldProfile = "profile"
	// FieldJobID is the standardized structured logging key for recap job identifiers.
	FieldJobID = "job_id"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
)
