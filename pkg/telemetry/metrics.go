package telemetry

import "github.com/trussle/collector/pkg/metrics"

// Counters holds the three counters a metrics sink increments.
type Counters struct {
	Started    metrics.Counter
	Stopped    metrics.Counter
	Exceptions metrics.Counter
}

type metricsSink struct {
	counters *Counters
}

func newMetricsSink(counters *Counters) Sink {
	return &metricsSink{
		counters: counters,
	}
}

func (s *metricsSink) Start(clientID string, args ...interface{}) {
	s.counters.Started.Inc()
}

func (s *metricsSink) Stop(clientID string) {
	s.counters.Stopped.Inc()
}

func (s *metricsSink) Exception(clientID string, err error) {
	s.counters.Exceptions.Inc()
}
