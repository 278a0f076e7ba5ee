package zap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/unkn0wn-root/typecache"
)

func TestFieldsReachZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core))

	l.Warn("compute failed", typecache.Fields{"type": "main.Foo", "err": errors.New("boom")})

	require.Equal(t, 1, logs.Len())
	e := logs.All()[0]
	require.Equal(t, "compute failed", e.Message)
	require.Equal(t, zapcore.WarnLevel, e.Level)
	require.Equal(t, "typecache", e.LoggerName)
	ctx := e.ContextMap()
	require.Equal(t, "main.Foo", ctx["type"])
	require.Equal(t, "boom", ctx["err"])
}

func TestNilLoggerIsNop(t *testing.T) {
	require.NotPanics(t, func() { New(nil).Error("x", nil) })
}
