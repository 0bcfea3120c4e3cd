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
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("loud"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
}

func TestForHandler_AddsHandlerField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := ForHandler(NewZapAdapter(zap.New(core)), "issues.get")

	l.WithError(errors.New("boom")).Warn("contract violated", map[string]interface{}{"reason": "type_mismatch"})

	entries := logs.All()
	assert.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "issues.get", fields["handler"])
	assert.Equal(t, "type_mismatch", fields["reason"])
	assert.Equal(t, "boom", fields["error"])
}
