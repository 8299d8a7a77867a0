package audit

import (
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"
)

// Config encapsulates the requirements for generating an audit Log
type Config struct {
	name         string
	remoteConfig *RemoteConfig
	localConfig  *LocalConfig
}

// Option defines a option for generating an audit log Config
type Option func(*Config) error

// Build ingests configuration options to then yield a Config and return an
// error if it fails during setup.
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

// With adds a type of audit log to use for the configuration.
func With(name string) Option {
	return func(config *Config) error {
		config.name = name
		return nil
	}
}

// WithRemoteConfig adds a remote audit log config to the configuration
func WithRemoteConfig(remoteConfig *RemoteConfig) Option {
	return func(config *Config) error {
		config.remoteConfig = remoteConfig
		return nil
	}
}

// WithLocalConfig adds a local audit log config to the configuration
func WithLocalConfig(localConfig *LocalConfig) Option {
	return func(config *Config) error {
		config.localConfig = localConfig
		return nil
	}
}

// New creates an audit log from a configuration or returns error if on
// failure.
func New(config *Config, logger log.Logger) (auditLog Log, err error) {
	switch strings.ToLower(config.name) {
	case "remote":
		auditLog, err = newRemoteLog(config.remoteConfig, logger)
		if err != nil {
			err = errors.Wrap(err, "remote audit log")
			return
		}
	case "local":
		auditLog, err = newLocalLog(config.localConfig, logger)
		if err != nil {
			err = errors.Wrap(err, "local audit log")
			return
		}
	case "nop":
		auditLog = newNopLog()
	default:
		err = errors.Errorf("unexpected audit log type %q", config.name)
	}
	return
}
