package build

import (
	btclogv1 "github.com/btcsuite/btclog"
)

// ansiStyle is an SGR escape sequence.
type ansiStyle string

const (
	styleReset   ansiStyle = "\x1b[0m"
	styleBold    ansiStyle = "\x1b[1m"
	styleFaint   ansiStyle = "\x1b[2m"
	styleRed     ansiStyle = "\x1b[31m"
	styleYellow  ansiStyle = "\x1b[33m"
	styleBlue    ansiStyle = "\x1b[34m"
	styleMagenta ansiStyle = "\x1b[35m"
)

// levelStyles maps log levels to the style their tag is printed in. Levels
// without an entry are printed unstyled.
var levelStyles = map[btclogv1.Level]ansiStyle{
	btclogv1.LevelTrace:    styleFaint,
	btclogv1.LevelDebug:    styleBlue,
	btclogv1.LevelWarn:     styleYellow,
	btclogv1.LevelError:    styleRed,
	btclogv1.LevelCritical: styleMagenta,
}

// styleString wraps s in the given style.
func styleString(s string, style ansiStyle) string {
	if style == "" {
		return s
	}

	return string(style) + s + string(styleReset)
}
