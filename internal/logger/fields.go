package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Standard tracing fields propagated through the call chain.
const (
	// FieldRequestID is the HTTP request ID (UUID).
	FieldRequestID = "request_id"

	// FieldUserID is the authenticated user's ID.
	FieldUserID = "user_id"

	// FieldCaptionID identifies the caption a vote or lookup targets.
	FieldCaptionID = "caption_id"

	// FieldRunID identifies one caption-pipeline run.
	FieldRunID = "run_id"

	// FieldComponent is the component/module name.
	FieldComponent = "component"
)

// Standard metric fields used for aggregation.
const (
	FieldDurationMs = "duration_ms"
	FieldStatus     = "status"
	FieldSize       = "size"
)
