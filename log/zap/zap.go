// Package zap routes typecache logs to a zap.Logger.
package zap

import (
	"github.com/unkn0wn-root/typecache"
	"go.uber.org/zap"
)

type ZapLogger struct{ L *zap.Logger }

var _ typecache.Logger = ZapLogger{}

// New names the logger "typecache"; a nil l yields a no-op logger.
func New(l *zap.Logger) ZapLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return ZapLogger{L: l.Named("typecache")}
}

func (z ZapLogger) Debug(msg string, f typecache.Fields) { z.L.Debug(msg, fields(f)...) }
func (z ZapLogger) Info(msg string, f typecache.Fields)  { z.L.Info(msg, fields(f)...) }
func (z ZapLogger) Warn(msg string, f typecache.Fields)  { z.L.Warn(msg, fields(f)...) }
func (z ZapLogger) Error(msg string, f typecache.Fields) { z.L.Error(msg, fields(f)...) }

func fields(f typecache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		if err, ok := v.(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}
