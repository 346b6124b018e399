package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// ============================================
// Standard Tracing Fields (Context level)
// These fields are propagated through the call chain
// ============================================

const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldJobID is the processing job ID
	FieldJobID = "job_id"

	// FieldUploadID is the statement upload ID
	FieldUploadID = "upload_id"

	// FieldWorkerID is the worker instance identity
	FieldWorkerID = "worker_id"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldUserID is the owning user ID
	FieldUserID = "user_id"

	// FieldAccountID is the target account ID
	FieldAccountID = "account_id"
)

// ============================================
// Standard Metric Fields (Entry level)
// These fields are used for aggregation and alerting
// ============================================

const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldStatus is the operation status
	FieldStatus = "status"
)
