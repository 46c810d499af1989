package node

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLoggerConsoleLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(LogConfig{Level: "WARN", Console: &buf})
	require.NoError(t, err)
	log.Info("hidden")
	log.Warn("shown", zap.Uint32("nonce", 7))
	require.NoError(t, log.Sync())

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "shown")
	require.Contains(t, out, "nonce")
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	_, err := NewLogger(LogConfig{Level: "verbose"})
	require.Error(t, err)
}

func TestNewLoggerFileIsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.log")
	var console bytes.Buffer
	log, err := NewLogger(LogConfig{Level: "info", File: path, Console: &console})
	require.NoError(t, err)
	log.Info("solution found", zap.Uint32("nonce", 2083236893))
	require.NoError(t, log.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(raw))
	require.True(t, strings.HasPrefix(line, "{"), line)
	require.Contains(t, line, `"msg":"solution found"`)
	require.Contains(t, line, `"nonce":2083236893`)
	require.Contains(t, console.String(), "solution found")
}
