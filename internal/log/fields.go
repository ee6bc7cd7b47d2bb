package log

// Field names used across the pipeline's structured logs.
const (
	FieldComponent = "component"
	FieldFile      = "file"
	FieldChecksum  = "checksum"
	FieldRows      = "rows"
	FieldColumns   = "columns"
	FieldFileID    = "file_id"
	FieldBatch     = "batch"
	FieldDuration  = "duration"
	FieldError     = "error"
	FieldStep      = "step"
)

const (
	ComponentApp          = "app"
	ComponentScanner      = "scanner"
	ComponentConsolidator = "consolidator"
	ComponentTransformer  = "transformer"
	ComponentWriter       = "writer"
	ComponentLoader       = "loader"
	ComponentDatabase     = "database"
	ComponentSetup        = "setup"
)
