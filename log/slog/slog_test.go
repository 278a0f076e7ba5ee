package slog

import (
	"bytes"
	"encoding/json"
	stdslog "log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/typecache"
)

func TestFieldsReachSlog(t *testing.T) {
	var buf bytes.Buffer
	l := New(stdslog.New(stdslog.NewJSONHandler(&buf, &stdslog.HandlerOptions{Level: stdslog.LevelInfo})))

	l.Debug("dropped", typecache.Fields{"x": 1})
	require.Zero(t, buf.Len(), "debug is below the handler level")

	l.Info("type slot created", typecache.Fields{"type": "main.Foo"})
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "INFO", rec["level"])
	require.Equal(t, "type slot created", rec["msg"])
	require.Equal(t, "main.Foo", rec["type"])
}
