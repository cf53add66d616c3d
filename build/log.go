package build

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/btcsuite/btclog/v2"
)

// LogType is an indicating the type of logging specified by the build flag.
type LogType byte

const (
	// LogTypeNone indicates no logging.
	LogTypeNone LogType = iota

	// LogTypeStandalone gives every sub logger its own handler, without
	// a sub logger manager.
	LogTypeStandalone

	// LogTypeDefault logs to the handler chosen by the command that is
	// running, normally stderr.
	LogTypeDefault
)

// String returns a human readable identifier for the logging type.
func (t LogType) String() string {
	switch t {
	case LogTypeNone:
		return "none"
	case LogTypeStandalone:
		return "standalone"
	case LogTypeDefault:
		return "default"
	default:
		return "unknown"
	}
}

// LogWriter is a stub type whose behavior can be changed using the build flags
// "stdlog" and "nolog". Logs always go to stderr so that command output on
// stdout stays machine readable. Passing "stdlog" gives every sub logger its
// own handler, and "nolog" implements Write as a no-op.
type LogWriter struct{}

// A compile time check to ensure LogWriter satisfies io.Writer.
var _ io.Writer = (*LogWriter)(nil)

// NewSubLogger constructs a new subsystem log from the current LogWriter
// implementation. This is primarily intended for use with stdlog, as the actual
// writer is shared amongst all instantiations.
func NewSubLogger(subsystem string,
	genSubLogger func(string) btclog.Logger) btclog.Logger {

	switch LoggingType {

	// Default logging is used when running the command line tool. The
	// caller hands us the generator of the sub logger manager.
	case LogTypeDefault:
		if genSubLogger != nil {
			return genSubLogger(subsystem)
		}

	// Standalone loggers are used in unit tests. They don't need to
	// share a backend since they all write to the same stream.
	case LogTypeStandalone:
		handler := btclog.NewDefaultHandler(&LogWriter{})
		logger := btclog.NewSLogger(handler.SubSystem(subsystem))

		// Set the logging level of the stdout logger to use the
		// configured logging level specified by build flags.
		level, _ := btclog.LevelFromString(LogLevel)
		logger.SetLevel(level)

		return logger
	}

	// For any other configurations, we'll disable logging.
	return btclog.Disabled
}

// SubLoggers is a type that holds a map of subsystem loggers keyed by their
// subsystem name.
type SubLoggers map[string]btclog.Logger

// LeveledSubLogger provides the ability to retrieve the subsystem loggers of
// a logger and set their log levels individually or all at once.
type LeveledSubLogger interface {
	// SubLoggers returns the map of all registered subsystem loggers.
	SubLoggers() SubLoggers

	// SupportedSubsystems returns a slice of strings containing the names
	// of the supported subsystems. Should ideally correspond to the keys
	// of the subsystem logger map and be sorted.
	SupportedSubsystems() []string

	// SetLogLevel assigns an individual subsystem logger a new log level.
	SetLogLevel(subsystemID string, logLevel string)

	// SetLogLevels assigns all subsystem loggers the same new log level.
	SetLogLevels(logLevel string)
}

// DebugLevels is a parsed --debuglevel value.
type DebugLevels struct {
	// Global is the level applied to all subsystems before the
	// per-subsystem levels. It is empty if none was given.
	Global string

	// Subsystems holds the per-subsystem levels in the order given.
	Subsystems []SubsystemLevel
}

// SubsystemLevel is the level of a single subsystem.
type SubsystemLevel struct {
	Subsystem string
	Level     string
}

// ParseDebugLevels parses a debug level string of the form
// [<level>][,<subsystem>=<level>]... into its global and per-subsystem parts.
// Subsystem names are not checked here since they are only known once the
// loggers are set up.
func ParseDebugLevels(s string) (*DebugLevels, error) {
	if s == "" {
		return nil, fmt.Errorf("empty debug level")
	}

	var levels DebugLevels
	for i, entry := range strings.Split(s, ",") {
		subsystem, level, isPair := strings.Cut(entry, "=")

		switch {
		// Only the first entry may be a bare level.
		case !isPair && i == 0:
			if !validLogLevel(entry) {
				return nil, fmt.Errorf("the specified debug "+
					"level [%v] is invalid", entry)
			}
			levels.Global = entry

		case !isPair:
			return nil, fmt.Errorf("the specified debug level "+
				"contains an invalid subsystem/level pair "+
				"[%v]", entry)

		case subsystem == "" || strings.Contains(level, "="):
			return nil, fmt.Errorf("the specified debug level has "+
				"an invalid format [%v] -- use format "+
				"subsystem1=level1,subsystem2=level2", entry)

		case !validLogLevel(level):
			return nil, fmt.Errorf("the specified debug level "+
				"[%v] of subsystem %v is invalid", level,
				subsystem)

		default:
			levels.Subsystems = append(
				levels.Subsystems, SubsystemLevel{
					Subsystem: subsystem,
					Level:     level,
				},
			)
		}
	}

	return &levels, nil
}

// Apply sets the parsed levels on the given logger. Nothing is changed if any
// of the subsystems is unknown to the logger.
func (d *DebugLevels) Apply(logger LeveledSubLogger) error {
	subLoggers := logger.SubLoggers()
	for _, s := range d.Subsystems {
		if _, ok := subLoggers[s.Subsystem]; !ok {
			return fmt.Errorf("the specified subsystem [%v] is "+
				"invalid -- supported subsystems are %v",
				s.Subsystem, logger.SupportedSubsystems())
		}
	}

	if d.Global != "" {
		logger.SetLogLevels(d.Global)
	}
	for _, s := range d.Subsystems {
		logger.SetLogLevel(s.Subsystem, s.Level)
	}

	return nil
}

// ParseAndSetDebugLevels parses the debug level string and applies it to the
// given logger.
func ParseAndSetDebugLevels(level string, logger LeveledSubLogger) error {
	levels, err := ParseDebugLevels(level)
	if err != nil {
		return err
	}

	return levels.Apply(logger)
}

// validLogLevel returns whether logLevel names one of the btclog levels.
func validLogLevel(logLevel string) bool {
	switch logLevel {
	case "trace", "debug", "info", "warn", "error", "critical", "off":
		return true
	}

	return false
}

// stderrWriter is used by the default handler of the command line tool.
var stderrWriter io.Writer = os.Stderr
