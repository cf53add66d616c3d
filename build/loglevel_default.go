//go:build !trace

package build

// LogLevel specifies a default log level of info for loggers created with the
// stdlog build tag.
const LogLevel = "info"
