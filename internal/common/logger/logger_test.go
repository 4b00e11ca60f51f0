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
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"info", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestZapAdapter_FieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).With(map[string]interface{}{"taskType": "semantics-description"})

	log.Error("reply decode failed", map[string]interface{}{
		"error":      errors.New("unexpected end of JSON input"),
		"replyBytes": 42,
	})
	log.WithError(errors.New("boom")).Warn("provider degraded", nil)

	entries := logs.All()
	assert.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, "semantics-description", first["taskType"])
	assert.Equal(t, "unexpected end of JSON input", first["error"])
	assert.EqualValues(t, 42, first["replyBytes"])

	second := entries[1].ContextMap()
	assert.Equal(t, "boom", second["error"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestNew_FallsBackToNopOnBadSink(t *testing.T) {
	l := New("info", "json", "unknown-scheme://nowhere")
	assert.NotNil(t, l)
	l.Info("dropped")
}

func TestNoOpLogger(t *testing.T) {
	log := NewNoOpLogger()
	assert.NotPanics(t, func() {
		log.Debug("x", nil)
		log.WithFields(map[string]interface{}{"a": 1}).Info("y", nil)
	})
}
