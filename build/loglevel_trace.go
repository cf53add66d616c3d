//go:build trace

package build

// LogLevel specifies a default log level of trace for loggers created with the
// stdlog build tag.
const LogLevel = "trace"
