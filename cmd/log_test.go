package cmd

import (
	"bytes"
	"testing"

	"log/slog"

	"github.com/stretchr/testify/require"
)

func TestLoggingWriter(t *testing.T) {
	buf := new(bytes.Buffer)
	lw := &LoggingWriter{Name: "console", Log: Logger(buf, slog.LevelInfo)}
	_, err := lw.Write([]byte("Data mis"))
	require.NoError(t, err)
	require.Empty(t, buf.String(), "partial lines are buffered")
	_, _ = lw.Write([]byte("match!\nSource: \t01 02\n\n"))
	_, _ = lw.Write([]byte{0x01, 0xfe})
	lw.Flush()

	logged := buf.String()
	require.Contains(t, logged, `text="Data mismatch!"`)
	require.Contains(t, logged, `text="Source: \t01 02"`)
	require.Contains(t, logged, "data=0x01fe")
	require.Equal(t, 3, bytes.Count(buf.Bytes(), []byte("msg=console")))
}

func TestParseLevel(t *testing.T) {
	lvl, err := parseLevel("debug")
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, lvl)
	lvl, err = parseLevel(" WARN ")
	require.NoError(t, err)
	require.Equal(t, slog.LevelWarn, lvl)
	_, err = parseLevel("loud")
	require.Error(t, err)
}
