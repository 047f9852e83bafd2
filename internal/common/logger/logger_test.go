package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRedacting_MasksMessageAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewRedacting(NewZapAdapter(zap.New(core)))

	log.Info("otp sent to 9876543210", map[string]interface{}{
		"pan":    "ABCDE1234F",
		"amount": 25.0,
	})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "otp sent to ****XXXX", entries[0].Message)

	ctx := entries[0].ContextMap()
	assert.Equal(t, "XXXXX****X", ctx["pan"])
	assert.Equal(t, 25.0, ctx["amount"])
}

func TestNewRedacting_DerivedLoggersStayRedacting(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewRedacting(NewZapAdapter(zap.New(core)))

	log.With(map[string]interface{}{"mobile": "9876543210"}).
		WithError(errors.New("lookup failed for ABCDE1234F")).
		Warn("lead export retry", nil)

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "****XXXX", ctx["mobile"])
	assert.Equal(t, "lookup failed for XXXXX****X", ctx["error"])
}

func TestNewRedacting_DoesNotDoubleWrap(t *testing.T) {
	log := NewRedacting(NewNoOpLogger())
	assert.Same(t, log, NewRedacting(log))
}

func TestNew_Levels(t *testing.T) {
	l := New("warn", "json")
	require.NotNil(t, l)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}
