package telemetry

import (
	"fmt"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

type logSink struct {
	logger log.Logger
}

// newLogSink creates a Sink that writes each event to a logger. Logger
// failures are discarded, an operation's outcome never depends on its
// observers.
func newLogSink(logger log.Logger) Sink {
	return &logSink{
		logger: logger,
	}
}

func (s *logSink) Start(clientID string, args ...interface{}) {
	keyvals := []interface{}{
		"client", clientID,
		"event", "start",
	}
	if len(args) > 0 {
		keyvals = append(keyvals, "args", fmt.Sprintf("%v", args))
	}
	_ = level.Debug(s.logger).Log(keyvals...)
}

func (s *logSink) Stop(clientID string) {
	_ = level.Debug(s.logger).Log("client", clientID, "event", "stop")
}

func (s *logSink) Exception(clientID string, err error) {
	_ = level.Warn(s.logger).Log("client", clientID, "event", "exception", "err", err)
}
