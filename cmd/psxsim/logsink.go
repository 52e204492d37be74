package main

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
)

// logrusSink adapts a logrus logger to logr. V(0) logs at info, V(1) at
// debug and anything more verbose at trace.
type logrusSink struct {
	entry *logrus.Entry
	name  string
}

var _ logr.LogSink = (*logrusSink)(nil)

// newLogger returns a logr.Logger writing through logger. Every record
// carries a run id so the output of concurrent runs can be told apart.
func newLogger(logger *logrus.Logger) (logr.Logger, string) {
	runID := xid.New().String()
	sink := &logrusSink{entry: logger.WithField("run_id", runID)}
	return logr.New(sink), runID
}

// parseLevel maps a configuration level name onto logrus.
func parseLevel(name string) (logrus.Level, error) {
	switch name {
	case "error":
		return logrus.ErrorLevel, nil
	case "warn":
		return logrus.WarnLevel, nil
	case "info":
		return logrus.InfoLevel, nil
	case "debug":
		return logrus.DebugLevel, nil
	case "trace":
		return logrus.TraceLevel, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", name)
	}
}

func (s *logrusSink) Init(logr.RuntimeInfo) {}

func levelFor(v int) logrus.Level {
	switch {
	case v <= 0:
		return logrus.InfoLevel
	case v == 1:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}

func (s *logrusSink) Enabled(level int) bool {
	return s.entry.Logger.IsLevelEnabled(levelFor(level))
}

func (s *logrusSink) Info(level int, msg string, keysAndValues ...any) {
	s.withFields(keysAndValues).Log(levelFor(level), s.prefix(msg))
}

func (s *logrusSink) Error(err error, msg string, keysAndValues ...any) {
	s.withFields(keysAndValues).WithError(err).Error(s.prefix(msg))
}

func (s *logrusSink) WithValues(keysAndValues ...any) logr.LogSink {
	return &logrusSink{entry: s.withFields(keysAndValues), name: s.name}
}

func (s *logrusSink) WithName(name string) logr.LogSink {
	if s.name != "" {
		name = s.name + "/" + name
	}
	return &logrusSink{entry: s.entry, name: name}
}

func (s *logrusSink) prefix(msg string) string {
	if s.name == "" {
		return msg
	}
	return s.name + ": " + msg
}

func (s *logrusSink) withFields(keysAndValues []any) *logrus.Entry {
	if len(keysAndValues) == 0 {
		return s.entry
	}

	fields := logrus.Fields{}
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 == len(keysAndValues) {
			fields[key] = "(missing)"
			break
		}
		fields[strings.TrimSpace(key)] = keysAndValues[i+1]
	}
	return s.entry.WithFields(fields)
}
