//go:build !stdlog && !nolog

package build

// LoggingType is a log type that writes to the handler set up by the running
// command, if present.
const LoggingType = LogTypeDefault

// Write writes the provided byte slice to stderr.
func (w *LogWriter) Write(b []byte) (int, error) {
	return stderrWriter.Write(b)
}
