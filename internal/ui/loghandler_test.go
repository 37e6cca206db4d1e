package ui_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/crtcopy/internal/ui"
)

func TestMultiHandler_TerminalAndRunLog(t *testing.T) {
	t.Parallel()

	// The CLI's arrangement: errors on the terminal, everything from INFO up
	// in the JSON run log.
	var term, runLog bytes.Buffer
	textH := slog.NewTextHandler(&term, &slog.HandlerOptions{Level: slog.LevelError})
	jsonH := slog.NewJSONHandler(&runLog, &slog.HandlerOptions{Level: slog.LevelInfo})

	logger := slog.New(ui.NewMultiHandler(textH, jsonH))
	logger.Debug("scan detail")
	logger.Info("copied", "path", "Documents/a.txt", "crtime", "0x01d5c8551f49c000")
	logger.Warn("copied without crtime", "path", "b.txt")
	logger.Error("copy failed", "path", "pagefile.sys", "error", "permission denied")

	assert.NotContains(t, term.String(), "copied")
	assert.Contains(t, term.String(), "copy failed")
	assert.Contains(t, term.String(), "path=pagefile.sys")

	lines := strings.Split(strings.TrimSpace(runLog.String()), "\n")
	require.Len(t, lines, 3)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "copied", rec["msg"])
	assert.Equal(t, "INFO", rec["level"])
	assert.Equal(t, "0x01d5c8551f49c000", rec["crtime"])
	assert.NotContains(t, runLog.String(), "scan detail")
}

func TestMultiHandler_Enabled(t *testing.T) {
	t.Parallel()

	warnH := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	errH := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError})

	m := ui.NewMultiHandler(warnH, errH)

	// Enabled if ANY handler accepts the level.
	assert.True(t, m.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, m.Enabled(context.Background(), slog.LevelError))
	assert.False(t, m.Enabled(context.Background(), slog.LevelInfo))
}

func TestMultiHandler_WithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	m := ui.NewMultiHandler(h)
	logger := slog.New(m.WithAttrs([]slog.Attr{slog.String("component", "engine")}))

	logger.Info("hello")
	assert.Contains(t, buf.String(), "component=engine")
}

func TestMultiHandler_WithGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	m := ui.NewMultiHandler(h)
	logger := slog.New(m.WithGroup("crtcopy"))

	logger.Info("event", "outcome", "copied")

	lines := strings.TrimSpace(buf.String())
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines), &rec))

	group, ok := rec["crtcopy"].(map[string]any)
	require.True(t, ok, "expected group 'crtcopy' in JSON output")
	assert.Equal(t, "copied", group["outcome"])
}

func TestMultiHandler_HandlerErrorsJoined(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ok := slog.NewTextHandler(&buf, nil)
	m := ui.NewMultiHandler(failingHandler{}, ok)

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "still delivered", 0)
	err := m.Handle(context.Background(), r)
	require.ErrorIs(t, err, errDiskFull)
	assert.Contains(t, buf.String(), "still delivered")
}

var errDiskFull = errors.New("disk full")

type failingHandler struct{}

func (failingHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (failingHandler) Handle(context.Context, slog.Record) error { return errDiskFull }
func (h failingHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h failingHandler) WithGroup(string) slog.Handler           { return h }
