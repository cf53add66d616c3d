//go:build stdlog

package build

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestStandaloneWriter asserts that standalone loggers write to the stderr
// writer.
func TestStandaloneWriter(t *testing.T) {
	var buf bytes.Buffer
	prev := stderrWriter
	stderrWriter = &buf
	t.Cleanup(func() { stderrWriter = prev })

	n, err := (&LogWriter{}).Write([]byte("line\n"))
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "line\n", buf.String())
	require.Equal(t, "standalone", LoggingType.String())
}
