//go:build stdlog

package build

// LoggingType is a log type whose sub loggers each get their own handler on
// stderr, independent of any sub logger manager. Used for tests.
const LoggingType = LogTypeStandalone

// Write writes the provided byte slice to stderr. Logs never share stdout
// with command output.
func (w *LogWriter) Write(b []byte) (int, error) {
	return stderrWriter.Write(b)
}
