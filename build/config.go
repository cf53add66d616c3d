package build

import (
	"fmt"

	btclogv1 "github.com/btcsuite/btclog"
	"github.com/btcsuite/btclog/v2"
)

// CallSite selects how the source location of a log line is printed.
type CallSite string

const (
	// CallSiteOff omits the source location.
	CallSiteOff CallSite = "off"

	// CallSiteShort prints the file name and line.
	CallSiteShort CallSite = "short"

	// CallSiteLong prints the full path and line.
	CallSiteLong CallSite = "long"
)

// Validate returns an error for an unknown call site mode.
func (c CallSite) Validate() error {
	switch c {
	case CallSiteOff, CallSiteShort, CallSiteLong:
		return nil

	default:
		return fmt.Errorf("unknown call site mode %q", string(c))
	}
}

// LogConfig holds the logging options of the command. There is a single
// console logger writing to stderr, log files are never written.
//
//nolint:lll
type LogConfig struct {
	Console *ConsoleConfig `group:"console" namespace:"console" description:"The logger writing to stderr."`
}

// ConsoleConfig holds the options of the console logger.
//
//nolint:lll
type ConsoleConfig struct {
	Disable      bool     `long:"disable" description:"Disable all logging."`
	NoTimestamps bool     `long:"no-timestamps" description:"Omit timestamps from log lines."`
	CallSite     CallSite `long:"call-site" description:"Include the source location of each log line." choice:"off" choice:"short" choice:"long"`
	Style        bool     `long:"style" description:"Color the level and subsystem of each log line."`
}

// DefaultLogConfig returns the logging options used without a config file.
// Timestamps are left out since a single invocation is short lived.
func DefaultLogConfig() *LogConfig {
	return &LogConfig{
		Console: &ConsoleConfig{
			NoTimestamps: true,
			CallSite:     CallSiteOff,
		},
	}
}

// HandlerOptions translates the console options to btclog handler options.
func (cfg *ConsoleConfig) HandlerOptions() []btclog.HandlerOption {
	var opts []btclog.HandlerOption

	if cfg.NoTimestamps {
		opts = append(opts, btclog.WithNoTimestamp())
	}

	if cfg.Style {
		opts = append(opts,
			btclog.WithStyledLevel(func(l btclogv1.Level) string {
				return styleString(
					fmt.Sprintf("[%s]", l), levelStyles[l],
				)
			}),
			btclog.WithStyledCallSite(
				func(file string, line int) string {
					return styleString(
						fmt.Sprintf("%s:%d", file, line),
						styleFaint,
					)
				},
			),
			btclog.WithStyledKeys(func(key string) string {
				return styleString(key, styleBold)
			}),
		)
	}

	switch cfg.CallSite {
	case CallSiteShort:
		opts = append(opts, btclog.WithCallerFlags(btclog.Lshortfile))

	case CallSiteLong:
		opts = append(opts, btclog.WithCallerFlags(btclog.Llongfile))
	}

	return opts
}
