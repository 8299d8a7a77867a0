package transport

import (
	"strings"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"

	"github.com/trussle/collector/pkg/models"
	"github.com/trussle/collector/pkg/receiver"
)

// Config encapsulates the requirements for generating a Transport
type Config struct {
	name         string
	remoteConfig *RemoteConfig
	mode         models.ReceiveMode
	lockDuration time.Duration
}

// Option defines a option for generating a transport Config
type Option func(*Config) error

// Build ingests configuration options to then yield a Config and return an
// error if it fails during setup.
func Build(opts ...Option) (*Config, error) {
	config := Config{
		lockDuration: time.Minute,
	}
	for _, opt := range opts {
		err := opt(&config)
		if err != nil {
			return nil, err
		}
	}
	return &config, nil
}

// With adds a type of transport to use for the configuration.
func With(name string) Option {
	return func(config *Config) error {
		config.name = name
		return nil
	}
}

// WithConfig adds a remote transport config to the configuration
func WithConfig(remoteConfig *RemoteConfig) Option {
	return func(config *Config) error {
		config.remoteConfig = remoteConfig
		return nil
	}
}

// WithReceiveMode adds a receive mode to the configuration
func WithReceiveMode(mode models.ReceiveMode) Option {
	return func(config *Config) error {
		config.mode = mode
		return nil
	}
}

// WithLockDuration adds a broker lock duration to the configuration
func WithLockDuration(duration time.Duration) Option {
	return func(config *Config) error {
		if duration <= 0 {
			return errors.Errorf("invalid lock duration %v", duration)
		}
		config.lockDuration = duration
		return nil
	}
}

// New creates a transport from a configuration or returns error if on
// failure.
func New(config *Config, logger log.Logger) (transport receiver.Transport, err error) {
	switch strings.ToLower(config.name) {
	case "remote":
		if config.remoteConfig == nil {
			err = errors.New("remote transport requires a remote config")
			return
		}
		config.remoteConfig.Mode = config.mode
		transport, err = newRemoteTransport(config.remoteConfig, logger)
		if err != nil {
			err = errors.Wrap(err, "remote transport")
			return
		}
	case "virtual":
		transport = NewVirtual(config.mode, config.lockDuration)
	case "nop":
		transport = NewNopTransport()
	default:
		err = errors.Errorf("unexpected transport type %q", config.name)
	}
	return
}
