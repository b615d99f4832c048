package logging

import (
	"context"
	"errors"
	"testing"

	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapAuditLogger_LogEvent(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	audit := NewAuditLogger(zap.New(core))

	audit.LogEvent(context.Background(), domain.NewAuditEvent(domain.UserRegisteredEvent, 7).
		WithPhone("+85291234567").
		WithEmail("alice@example.com").
		WithClientContext(&domain.ClientContext{IPAddress: "10.0.0.1", UserAgent: "test"}).
		WithMetadata("member_number", "JR1"))

	audit.LogEvent(context.Background(), domain.NewAuditEvent(domain.OTPVerifyFailedEvent, 0).
		WithError(errors.New("wrong code")))

	audit.LogEvent(context.Background(), nil)

	entries := logs.All()
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, zapcore.InfoLevel, first.Level)
	assert.Equal(t, "audit", first.LoggerName)
	ctx := first.ContextMap()
	assert.Equal(t, "USER_REGISTERED", ctx["event_type"])
	assert.Equal(t, "****4567", ctx["phone"])
	assert.Equal(t, "a***@example.com", ctx["email"])
	assert.Equal(t, "10.0.0.1", ctx["ip_address"])

	second := entries[1]
	assert.Equal(t, zapcore.WarnLevel, second.Level)
	assert.Equal(t, "wrong code", second.ContextMap()["error"])
	assert.NotContains(t, second.ContextMap(), "user_id")
}

func TestMaskHelpers(t *testing.T) {
	assert.Equal(t, "****", MaskPhone("123"))
	assert.Equal(t, "*@x.com", MaskEmail("@x.com"))
	assert.Equal(t, "***", MaskEmail("no-at-sign"))
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("warn", "release")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	_, err = NewLogger("loud", "release")
	assert.Error(t, err)
}
