package ports

import "context"

// Logger defines a standard interface for logging messages and errors,
// so adapters and the app layer stay decoupled from the concrete logger.
// Optional fields are merged into the log line as key=value pairs.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...map[string]interface{})
	Info(ctx context.Context, msg string, fields ...map[string]interface{})
	Warn(ctx context.Context, msg string, fields ...map[string]interface{})
	// Error logs err alongside msg at Error level.
	Error(ctx context.Context, err error, msg string, fields ...map[string]interface{})
}
