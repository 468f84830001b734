package logging

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel(" error "))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("chatty"))
}

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "nosh.log")
	l, err := New("debug", path)
	require.NoError(t, err)

	l.With(map[string]interface{}{"page": 2}).
		WithError(errors.New("boom")).
		Debug("feed page", map[string]interface{}{"results": 20})
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	require.NotEmpty(t, line)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "feed page", entry["msg"])
	assert.Equal(t, "boom", entry["error"])
	assert.EqualValues(t, 2, entry["page"])
	assert.EqualValues(t, 20, entry["results"])
}

func TestNew_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nosh.log")
	l, err := New("warn", path)
	require.NoError(t, err)

	l.Info("hidden", nil)
	l.Warn("shown", nil)
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestNew_EmptyPathIsNop(t *testing.T) {
	l, err := New("info", "")
	require.NoError(t, err)
	l.Info("nothing", map[string]interface{}{"k": "v"})
}

func TestNewZapAdapter_CarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapAdapter(zap.New(core))

	l.With(map[string]interface{}{"component": "feed"}).Info("ranked", map[string]interface{}{"passed": 3})

	entries := logs.FilterMessage("ranked").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "feed", fields["component"])
	assert.EqualValues(t, 3, fields["passed"])
}

func TestNewZapAdapter_NilIsNop(t *testing.T) {
	l := NewZapAdapter(nil)
	l.Error("dropped", nil)
	assert.NoError(t, l.Sync())
}
