package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestComponentLoggerFollowsInitialize(t *testing.T) {
	component := GetForComponent("ledger")

	var buf bytes.Buffer
	InitializeWithWriter("debug", "json", &buf)
	t.Cleanup(func() { InitializeWithWriter("info", "console", os.Stdout) })

	component.Info().Str("holder", "alice").Msg("deposit committed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	require.Equal(t, "ledger", line["component"])
	require.Equal(t, "alice", line["holder"])
	require.Equal(t, "deposit committed", line["message"])
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	require.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	require.Equal(t, zerolog.InfoLevel, ParseLevel(""))
}

func TestFileWriterAppends(t *testing.T) {
	path := t.TempDir() + "/lockdrop.log"
	w, err := FileWriter(path)
	require.NoError(t, err)

	InitializeWithWriter("info", "json", w)
	t.Cleanup(func() { InitializeWithWriter("info", "console", os.Stdout) })
	GetForComponent("web_server").Info().Msg("started")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"component":"web_server"`)
}
