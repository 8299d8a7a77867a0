// Package telemetry records start/stop/exception events around each
// receiver operation. Sinks observe, they never steer: no return value
// is consumed and a misbehaving sink must not change the outcome of
// the operation it observes.
package telemetry

import (
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"
)

// Sink receives an event at the start of every operation, and exactly
// one of stop or exception when it finishes.
type Sink interface {

	// Start an operation for the given client
	Start(clientID string, args ...interface{})

	// Stop the operation for the given client, recording success
	Stop(clientID string)

	// Exception records the failure of the operation for the given
	// client
	Exception(clientID string, err error)
}

// Config encapsulates the requirements for generating a Sink
type Config struct {
	name     string
	logger   log.Logger
	counters *Counters
}

// Option defines a option for generating a telemetry Config
type Option func(*Config) error

// Build ingests configuration options to then yield a Config and return
// an error if it fails during setup.
func Build(opts ...Option) (*Config, error) {
	var config Config
	for _, opt := range opts {
		err := opt(&config)
		if err != nil {
			return nil, err
		}
	}
	return &config, nil
}

// With adds a type of sink to use for the configuration.
func With(name string) Option {
	return func(config *Config) error {
		config.name = name
		return nil
	}
}

// WithLogger adds a logger for the log sink to the configuration
func WithLogger(logger log.Logger) Option {
	return func(config *Config) error {
		config.logger = logger
		return nil
	}
}

// WithCounters adds counters for the metrics sink to the configuration
func WithCounters(counters *Counters) Option {
	return func(config *Config) error {
		config.counters = counters
		return nil
	}
}

// New creates a sink from a configuration or returns error if on
// failure.
func New(config *Config) (sink Sink, err error) {
	switch strings.ToLower(config.name) {
	case "log":
		if config.logger == nil {
			err = errors.New("log sink requires a logger")
			return
		}
		sink = newLogSink(config.logger)
	case "metrics":
		if config.counters == nil {
			err = errors.New("metrics sink requires counters")
			return
		}
		sink = newMetricsSink(config.counters)
	case "nop":
		sink = newNopSink()
	default:
		err = errors.Errorf("unexpected sink type %q", config.name)
	}
	return
}
