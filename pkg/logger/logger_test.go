package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWithWriterPlain(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, slog.LevelInfo, false)

	l.Debug("hidden")
	l.Info("session opened", "dsn", "file::memory:")
	l.Error("reset failed", Error(errors.New("boom")))

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "msg=\"session opened\"")
	require.Contains(t, out, "dsn=file::memory:")
	require.Contains(t, out, "error=boom")
}

func TestNewWithWriterColor(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, slog.LevelDebug, true)

	l.Debug("statement executed", Stack("main.go:1"))
	out := buf.String()
	require.Contains(t, out, "statement executed")
	require.Contains(t, out, "main.go:1")
}

func TestLoggerImplementsInterface(t *testing.T) {
	var _ Interface = New()
	require.NotNil(t, New().GetSlogLogger())
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, slog.LevelInfo, false).With("remote", "127.0.0.1")

	l.Warn("request rejected")
	require.Contains(t, buf.String(), "remote=127.0.0.1")
}

func TestNewStderrKeepsDefault(t *testing.T) {
	before := slog.Default()
	require.NotNil(t, NewStderr(slog.LevelDebug).GetSlogLogger())
	require.Same(t, before, slog.Default())
}
