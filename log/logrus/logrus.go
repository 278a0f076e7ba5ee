// Package logrus routes typecache logs to a logrus.Entry.
package logrus

import (
	"github.com/sirupsen/logrus"
	"github.com/unkn0wn-root/typecache"
)

type LogrusLogger struct{ E *logrus.Entry }

var _ typecache.Logger = LogrusLogger{}

// New tags every record with component=typecache.
func New(l *logrus.Logger) LogrusLogger {
	return LogrusLogger{E: l.WithField("component", "typecache")}
}

func (l LogrusLogger) Debug(msg string, f typecache.Fields) { l.E.WithFields(logrus.Fields(f)).Debug(msg) }
func (l LogrusLogger) Info(msg string, f typecache.Fields)  { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l LogrusLogger) Warn(msg string, f typecache.Fields)  { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l LogrusLogger) Error(msg string, f typecache.Fields) { l.E.WithFields(logrus.Fields(f)).Error(msg) }
