package sloghooks

import (
	"bytes"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newBufLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestKeysAreRedacted(t *testing.T) {
	var buf bytes.Buffer
	h := New(newBufLogger(&buf), Options{})

	h.RemoveOutage("tv:users:secret", errors.New("bump"), errors.New("del"))

	out := buf.String()
	require.Contains(t, out, "typecache.remove_outage")
	require.NotContains(t, out, "secret")
	require.Contains(t, out, "bump_err=bump")
}

func TestSelfHealSampling(t *testing.T) {
	var buf bytes.Buffer
	h := New(newBufLogger(&buf), Options{SelfHealEvery: 3, Redact: func(k string) string { return k }})

	for i := 0; i < 9; i++ {
		h.TierSelfHeal("k", "corrupt")
	}
	require.Equal(t, 3, strings.Count(buf.String(), "typecache.tier_self_heal"))
}

func TestNilLogger(t *testing.T) {
	h := New(nil, Options{})
	require.NotPanics(t, func() {
		h.ComputeFailed(reflect.TypeOf(0), errors.New("x"))
		h.ProbeSaturated(reflect.TypeOf(0), 64)
	})
}
