package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestZapWrapper_FieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).WithFields(map[string]interface{}{"taskType": "generate-recommendations"})

	log.Info("processing job", map[string]interface{}{"jobKey": int64(42)})
	log.Warn("cache read failed", map[string]interface{}{"error": errors.New("connection refused")})

	entries := logs.All()
	assert.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, "generate-recommendations", first["taskType"])
	assert.Equal(t, int64(42), first["jobKey"])

	second := entries[1].ContextMap()
	assert.Equal(t, "connection refused", second["error"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestNew_FallsBackForUnknownFormat(t *testing.T) {
	assert.NotNil(t, New("info", "json"))
	assert.NotNil(t, New("debug", "console"))
	assert.NotNil(t, NewNoOpLogger())
}
