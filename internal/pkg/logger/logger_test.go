package logger

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func resetLogger() {
	global = nil
	once = sync.Once{}
	atomicLevel.SetLevel(zapcore.InfoLevel)
}

func TestInit_Levels(t *testing.T) {
	tests := []struct {
		level, format string
		want          zapcore.Level
	}{
		{"info", FormatJSON, zapcore.InfoLevel},
		{"debug", FormatConsole, zapcore.DebugLevel},
		{"warn", "logfmt", zapcore.WarnLevel},
		{"error", FormatJSON, zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			resetLogger()
			require.NoError(t, Init(tt.level, tt.format))
			assert.Equal(t, tt.want, GetLevel())
			assert.NotSame(t, nop, L())
		})
	}
}

func TestInit_RejectsUnknownLevel(t *testing.T) {
	resetLogger()
	err := Init("verbose", FormatJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"verbose"`)
	assert.Same(t, nop, L(), "a failed Init must leave the no-op logger in place")
}

func TestInit_OnlyFirstCallApplies(t *testing.T) {
	resetLogger()
	require.NoError(t, Init("warn", FormatJSON))
	first := L()

	require.NoError(t, Init("debug", FormatConsole))
	assert.Same(t, first, L())
	assert.Equal(t, zapcore.WarnLevel, GetLevel())
}

func TestNewConfig(t *testing.T) {
	jsonCfg := newConfig(FormatJSON)
	assert.Equal(t, "json", jsonCfg.Encoding)
	assert.Equal(t, "time", jsonCfg.EncoderConfig.TimeKey)
	assert.Nil(t, jsonCfg.Sampling)

	consoleCfg := newConfig(FormatConsole)
	assert.Equal(t, "console", consoleCfg.Encoding)
	assert.Nil(t, consoleCfg.Sampling)

	assert.Equal(t, "json", newConfig("").Encoding, "unknown formats fall back to JSON")
}

func TestSetLevel(t *testing.T) {
	resetLogger()
	require.NoError(t, Init("info", FormatJSON))

	require.NoError(t, SetLevel("debug"))
	assert.True(t, L().Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, SetLevel("error"))
	assert.False(t, L().Core().Enabled(zapcore.WarnLevel))

	require.Error(t, SetLevel("bogus"))
	assert.Equal(t, zapcore.ErrorLevel, GetLevel(), "a rejected level leaves the old one")
}

func TestL_NopBeforeInit(t *testing.T) {
	resetLogger()
	require.NotNil(t, L())
	assert.NotPanics(t, func() {
		Debug("dropped")
		Info("dropped")
		Warn("dropped")
		Error("dropped")
	})
	assert.NoError(t, Sync())
}

func TestLevelHandler_ChangesRunningLevel(t *testing.T) {
	resetLogger()
	require.NoError(t, Init("info", FormatJSON))
	h := LevelHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/log/level", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"level":"info"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/log/level", strings.NewReader(`{"level":"debug"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, zapcore.DebugLevel, GetLevel())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/log/level", strings.NewReader(`{"level":"loud"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, zapcore.DebugLevel, GetLevel())
}
