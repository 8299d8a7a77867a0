package audit

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/credentials/ec2rolecreds"
	"github.com/aws/aws-sdk-go/aws/ec2metadata"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/firehose"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"

	"github.com/trussle/collector/pkg/lru"
	"github.com/trussle/collector/pkg/models"
	"github.com/trussle/collector/pkg/uuid"
)

const (
	defaultSelectCacheAmount = 1000
)

// RemoteConfig creates a configuration to create a remote Log.
type RemoteConfig struct {
	EC2Role           bool
	ID, Secret, Token string
	Region, Stream    string
}

type remoteLog struct {
	client    *firehose.Firehose
	streamURL *string
	lru       *lru.LRU
	logger    log.Logger
}

// newRemoteLog creates a Log that ships settlement rows to a firehose
// delivery stream, keeping the most recent settlements in memory for
// duplicate inspection.
func newRemoteLog(config *RemoteConfig, logger log.Logger) (Log, error) {
	// If in EC2Role, attempt to get things from env or ec2role, else just use
	// static credentials...
	var creds *credentials.Credentials
	if config.EC2Role {
		creds = credentials.NewChainCredentials([]credentials.Provider{
			&credentials.EnvProvider{},
			&ec2rolecreds.EC2RoleProvider{
				Client: ec2metadata.New(session.New()),
			},
		})
	} else {
		creds = credentials.NewStaticCredentials(
			config.ID,
			config.Secret,
			config.Token,
		)
	}
	if _, err := creds.Get(); err != nil {
		return nil, errors.Wrap(err, "invalid credentials")
	}

	var (
		cfg = aws.NewConfig().
			WithRegion(config.Region).
			WithCredentials(creds).
			WithCredentialsChainVerboseErrors(true)
		client = firehose.New(session.New(cfg))
	)

	remote := &remoteLog{
		client:    client,
		streamURL: aws.String(config.Stream),
		logger:    logger,
	}

	remote.lru = lru.NewLRU(defaultSelectCacheAmount, remote.onElementEviction)

	return remote, nil
}

func (r *remoteLog) Append(txn models.Transaction) error {
	// Serialize all the settlement data
	var data [][]byte
	if err := txn.Walk(func(token uuid.UUID, msg models.Message, d models.Disposition) error {
		data = append(data, row(token, msg, d))
		return nil
	}); err != nil {
		return err
	}

	records := make([]*firehose.Record, len(data))
	for k, v := range data {
		records[k] = &firehose.Record{
			Data: v,
		}
	}

	input := &firehose.PutRecordBatchInput{
		DeliveryStreamName: r.streamURL,
		Records:            records,
	}

	if output, err := r.client.PutRecordBatch(input); err != nil {
		return err
	} else if failed := int(*output.FailedPutCount); failed > 0 {
		level.Warn(r.logger).Log("state", "remote-put", "failed", failed)
	}

	// Store the settlements in the LRU
	if err := txn.Walk(func(token uuid.UUID, msg models.Message, d models.Disposition) error {
		r.lru.Add(token, msg)
		return nil
	}); err != nil {
		// We don't care about this error.
		level.Warn(r.logger).Log("state", "append", "err", err)
	}

	return nil
}

func (r *remoteLog) onElementEviction(reason lru.EvictionReason, key uuid.UUID, value models.Message) {
	// Do nothing here, we don't really care.
}

func row(token uuid.UUID, msg models.Message, d models.Disposition) []byte {
	res := fmt.Sprintf("%s %s %d %s %s\n",
		token,
		d,
		msg.SequenceNumber(),
		msg.MessageID(),
		string(msg.Body()),
	)
	return []byte(res)
}

// RemoteConfigOption defines a option for generating a RemoteConfig
type RemoteConfigOption func(*RemoteConfig) error

// BuildRemoteConfig ingests configuration options to then yield a
// RemoteConfig, and return an error if it fails during configuring.
func BuildRemoteConfig(opts ...RemoteConfigOption) (*RemoteConfig, error) {
	var config RemoteConfig
	for _, opt := range opts {
		err := opt(&config)
		if err != nil {
			return nil, err
		}
	}
	return &config, nil
}

// WithEC2Role adds an EC2Role option to the configuration
func WithEC2Role(ec2Role bool) RemoteConfigOption {
	return func(config *RemoteConfig) error {
		config.EC2Role = ec2Role
		return nil
	}
}

// WithID adds an ID option to the configuration
func WithID(id string) RemoteConfigOption {
	return func(config *RemoteConfig) error {
		config.ID = id
		return nil
	}
}

// WithSecret adds an Secret option to the configuration
func WithSecret(secret string) RemoteConfigOption {
	return func(config *RemoteConfig) error {
		config.Secret = secret
		return nil
	}
}

// WithToken adds an Token option to the configuration
func WithToken(token string) RemoteConfigOption {
	return func(config *RemoteConfig) error {
		config.Token = token
		return nil
	}
}

// WithRegion adds an Region option to the configuration
func WithRegion(region string) RemoteConfigOption {
	return func(config *RemoteConfig) error {
		config.Region = region
		return nil
	}
}

// WithStream adds an Stream option to the configuration
func WithStream(stream string) RemoteConfigOption {
	return func(config *RemoteConfig) error {
		config.Stream = stream
		return nil
	}
}
