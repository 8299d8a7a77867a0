package transport

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"

	"github.com/trussle/collector/pkg/mgmt"
	"github.com/trussle/collector/pkg/models"
	"github.com/trussle/collector/pkg/receiver"
	"github.com/trussle/collector/pkg/uuid"
)

const (
	maxWaitTime = 20 * time.Second
)

// RemoteConfig creates a configuration to create a remote transport.
type RemoteConfig struct {
	ID, Secret, Token   string
	Region, Queue       string
	DeadLetterQueue     string
	MaxNumberOfMessages int64
	VisibilityTimeout   time.Duration
	Mode                models.ReceiveMode
	Executor            mgmt.Executor
}

// sqsClient is the slice of the SQS API this transport exercises.
type sqsClient interface {
	ReceiveMessageWithContext(ctx aws.Context, input *sqs.ReceiveMessageInput, opts ...request.Option) (*sqs.ReceiveMessageOutput, error)
	DeleteMessageBatchWithContext(ctx aws.Context, input *sqs.DeleteMessageBatchInput, opts ...request.Option) (*sqs.DeleteMessageBatchOutput, error)
	ChangeMessageVisibilityBatchWithContext(ctx aws.Context, input *sqs.ChangeMessageVisibilityBatchInput, opts ...request.Option) (*sqs.ChangeMessageVisibilityBatchOutput, error)
	ChangeMessageVisibilityWithContext(ctx aws.Context, input *sqs.ChangeMessageVisibilityInput, opts ...request.Option) (*sqs.ChangeMessageVisibilityOutput, error)
	SendMessageWithContext(ctx aws.Context, input *sqs.SendMessageInput, opts ...request.Option) (*sqs.SendMessageOutput, error)
}

var _ sqsClient = (*sqs.SQS)(nil)

// remoteTransport abstracts the broker over a SQS queue. The receipt
// handle of a delivery never leaves this type; callers address
// deliveries by lock token and the mapping lives here.
type remoteTransport struct {
	mutex             sync.Mutex
	client            sqsClient
	queueURL          *string
	deadLetterURL     *string
	maxMessages       int64
	visibilityTimeout time.Duration
	mode              models.ReceiveMode
	executor          mgmt.Executor
	randSource        *rand.Rand
	inflight          map[uuid.UUID]inflightMessage
	logger            log.Logger
}

type inflightMessage struct {
	receipt string
	body    []byte
}

// NewRemoteTransport creates a transport that abstracts over a SQS
// queue.
func NewRemoteTransport(config *RemoteConfig, logger log.Logger) (receiver.Transport, error) {
	return newRemoteTransport(config, logger)
}

func newRemoteTransport(config *RemoteConfig, logger log.Logger) (*remoteTransport, error) {
	creds := credentials.NewChainCredentials(
		[]credentials.Provider{
			&credentials.EnvProvider{},
			&credentials.StaticProvider{
				Value: credentials.Value{
					AccessKeyID:     config.ID,
					SecretAccessKey: config.Secret,
					SessionToken:    config.Token,
				},
			},
		},
	)
	if _, err := creds.Get(); err != nil {
		return nil, errors.Wrap(err, "invalid credentials")
	}

	var (
		cfg = aws.NewConfig().
			WithRegion(config.Region).
			WithCredentials(creds).
			WithCredentialsChainVerboseErrors(true)
		client = sqs.New(session.New(cfg))
	)

	queueURL, err := client.GetQueueUrl(&sqs.GetQueueUrlInput{
		QueueName: aws.String(config.Queue),
	})
	if err != nil {
		return nil, err
	}

	var deadLetterURL *string
	if config.DeadLetterQueue != "" {
		res, err := client.GetQueueUrl(&sqs.GetQueueUrlInput{
			QueueName: aws.String(config.DeadLetterQueue),
		})
		if err != nil {
			return nil, err
		}
		deadLetterURL = res.QueueUrl
	}

	return &remoteTransport{
		client:            client,
		queueURL:          queueURL.QueueUrl,
		deadLetterURL:     deadLetterURL,
		maxMessages:       config.MaxNumberOfMessages,
		visibilityTimeout: config.VisibilityTimeout,
		mode:              config.Mode,
		executor:          config.Executor,
		randSource:        rand.New(rand.NewSource(time.Now().UnixNano())),
		inflight:          make(map[uuid.UUID]inflightMessage),
		logger:            logger,
	}, nil
}

func (t *remoteTransport) Receive(ctx context.Context, maxCount, prefetch int) ([]models.Message, error) {
	count := int64(maxCount)
	if t.maxMessages > 0 && count > t.maxMessages {
		count = t.maxMessages
	}

	input := &sqs.ReceiveMessageInput{
		QueueUrl:            t.queueURL,
		MaxNumberOfMessages: aws.Int64(count),
		AttributeNames: []*string{
			aws.String(sqs.MessageSystemAttributeNameSequenceNumber),
		},
		WaitTimeSeconds: t.waitTime(ctx),
	}
	if seconds := int64(t.visibilityTimeout / time.Second); seconds > 0 {
		input.VisibilityTimeout = aws.Int64(seconds)
	}

	resp, err := t.client.ReceiveMessageWithContext(ctx, input)
	if err != nil {
		return nil, err
	}

	var (
		now  = time.Now()
		msgs = make([]models.Message, len(resp.Messages))
	)

	t.mutex.Lock()
	for k, v := range resp.Messages {
		token, e := uuid.New(t.randSource)
		if e != nil {
			t.mutex.Unlock()
			return nil, e
		}

		body := []byte(aws.StringValue(v.Body))
		t.inflight[token] = inflightMessage{
			receipt: aws.StringValue(v.ReceiptHandle),
			body:    body,
		}

		msgs[k] = NewMessage(
			sequenceNumberOf(v),
			token,
			now.Add(t.visibilityTimeout),
			aws.StringValue(v.MessageId),
			body,
		)
	}
	t.mutex.Unlock()

	if t.mode == models.ReceiveAndDelete && len(msgs) > 0 {
		tokens := make([]uuid.UUID, len(msgs))
		for k, m := range msgs {
			tokens[k] = m.LockToken()
		}
		if err := t.Complete(ctx, tokens); err != nil {
			return nil, err
		}
	}

	return msgs, nil
}

func (t *remoteTransport) ReceiveBySequenceNumbers(ctx context.Context, numbers []int64) ([]models.Message, error) {
	return nil, receiver.NewNotSupported("receive by sequence number requires a management link")
}

func (t *remoteTransport) Complete(ctx context.Context, tokens []uuid.UUID) error {
	entries := make([]*sqs.DeleteMessageBatchRequestEntry, len(tokens))
	for k, token := range tokens {
		msg, err := t.peekInflight(token)
		if err != nil {
			return err
		}
		entries[k] = &sqs.DeleteMessageBatchRequestEntry{
			Id:            aws.String(strconv.Itoa(k)),
			ReceiptHandle: aws.String(msg.receipt),
		}
	}

	output, err := t.client.DeleteMessageBatchWithContext(ctx, &sqs.DeleteMessageBatchInput{
		Entries:  entries,
		QueueUrl: t.queueURL,
	})
	if err != nil {
		return err
	}

	t.settled(tokens, output.Failed)
	if num := len(output.Failed); num > 0 {
		level.Warn(t.logger).Log("state", "complete", "failed", num)
		return errors.Errorf("failed to complete %d messages", num)
	}
	return nil
}

func (t *remoteTransport) Abandon(ctx context.Context, tokens []uuid.UUID) error {
	entries := make([]*sqs.ChangeMessageVisibilityBatchRequestEntry, len(tokens))
	for k, token := range tokens {
		msg, err := t.peekInflight(token)
		if err != nil {
			return err
		}
		entries[k] = &sqs.ChangeMessageVisibilityBatchRequestEntry{
			Id:                aws.String(strconv.Itoa(k)),
			ReceiptHandle:     aws.String(msg.receipt),
			VisibilityTimeout: aws.Int64(0),
		}
	}

	output, err := t.client.ChangeMessageVisibilityBatchWithContext(ctx, &sqs.ChangeMessageVisibilityBatchInput{
		Entries:  entries,
		QueueUrl: t.queueURL,
	})
	if err != nil {
		return err
	}

	t.settled(tokens, output.Failed)
	if num := len(output.Failed); num > 0 {
		level.Warn(t.logger).Log("state", "abandon", "failed", num)
		return errors.Errorf("failed to abandon %d messages", num)
	}
	return nil
}

func (t *remoteTransport) Defer(ctx context.Context, tokens []uuid.UUID) error {
	return receiver.NewNotSupported("defer requires a management link")
}

// DeadLetter moves the messages to the configured dead-letter queue.
// SQS has no broker-side suspend, so the move is a send followed by a
// delete of the original delivery.
func (t *remoteTransport) DeadLetter(ctx context.Context, tokens []uuid.UUID, reason, description string) error {
	if t.deadLetterURL == nil {
		return receiver.NewNotSupported("no dead-letter queue configured")
	}

	for _, token := range tokens {
		msg, err := t.peekInflight(token)
		if err != nil {
			return err
		}

		input := &sqs.SendMessageInput{
			QueueUrl:    t.deadLetterURL,
			MessageBody: aws.String(string(msg.body)),
		}
		if reason != "" {
			input.MessageAttributes = map[string]*sqs.MessageAttributeValue{
				mgmt.FieldDeadLetterReason: {
					DataType:    aws.String("String"),
					StringValue: aws.String(reason),
				},
				mgmt.FieldDeadLetterDescription: {
					DataType:    aws.String("String"),
					StringValue: aws.String(description),
				},
			}
		}
		if _, err := t.client.SendMessageWithContext(ctx, input); err != nil {
			return err
		}
	}

	return t.Complete(ctx, tokens)
}

func (t *remoteTransport) RenewLock(ctx context.Context, token uuid.UUID) (time.Time, error) {
	msg, err := t.peekInflight(token)
	if err != nil {
		return time.Time{}, err
	}

	seconds := int64(t.visibilityTimeout / time.Second)
	_, err = t.client.ChangeMessageVisibilityWithContext(ctx, &sqs.ChangeMessageVisibilityInput{
		QueueUrl:          t.queueURL,
		ReceiptHandle:     aws.String(msg.receipt),
		VisibilityTimeout: aws.Int64(seconds),
	})
	if err != nil {
		return time.Time{}, err
	}
	return time.Now().Add(t.visibilityTimeout), nil
}

func (t *remoteTransport) ExecuteManagementRequest(ctx context.Context, req mgmt.Request) (mgmt.Response, error) {
	if t.executor == nil {
		return mgmt.Response{}, receiver.NewNotSupported("no management link configured")
	}
	return t.executor.Execute(ctx, req)
}

// settled drops the in-flight mappings the broker accepted. Entries the
// broker reported as failed keep their mapping so the settlement stays
// retryable.
func (t *remoteTransport) settled(tokens []uuid.UUID, failed []*sqs.BatchResultErrorEntry) {
	skip := make(map[int]struct{}, len(failed))
	for _, entry := range failed {
		if k, err := strconv.Atoi(aws.StringValue(entry.Id)); err == nil {
			skip[k] = struct{}{}
		}
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	for k, token := range tokens {
		if _, ok := skip[k]; ok {
			continue
		}
		delete(t.inflight, token)
	}
}

// peekInflight resolves an in-flight delivery without releasing it,
// failing on tokens this transport never issued or already settled.
func (t *remoteTransport) peekInflight(token uuid.UUID) (inflightMessage, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	msg, ok := t.inflight[token]
	if !ok {
		return inflightMessage{}, errors.Errorf("unknown lock token %s", token)
	}
	return msg, nil
}

// waitTime derives the long-poll duration from the remaining deadline,
// capped at the SQS maximum.
func (t *remoteTransport) waitTime(ctx context.Context) *int64 {
	deadline, ok := ctx.Deadline()
	if !ok {
		return nil
	}

	remaining := time.Until(deadline)
	if remaining > maxWaitTime {
		remaining = maxWaitTime
	}
	seconds := int64(remaining / time.Second)
	if seconds <= 0 {
		return nil
	}
	return aws.Int64(seconds)
}

func sequenceNumberOf(msg *sqs.Message) int64 {
	attr, ok := msg.Attributes[sqs.MessageSystemAttributeNameSequenceNumber]
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(aws.StringValue(attr), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

var _ receiver.Transport = (*remoteTransport)(nil)

// ConfigOption defines a option for generating a RemoteConfig
type ConfigOption func(*RemoteConfig) error

// BuildConfig ingests configuration options to then yield a
// RemoteConfig, and return an error if it fails during configuring.
func BuildConfig(opts ...ConfigOption) (*RemoteConfig, error) {
	var config RemoteConfig
	for _, opt := range opts {
		err := opt(&config)
		if err != nil {
			return nil, err
		}
	}
	return &config, nil
}

// WithID adds an ID option to the configuration
func WithID(id string) ConfigOption {
	return func(config *RemoteConfig) error {
		config.ID = id
		return nil
	}
}

// WithSecret adds an Secret option to the configuration
func WithSecret(secret string) ConfigOption {
	return func(config *RemoteConfig) error {
		config.Secret = secret
		return nil
	}
}

// WithToken adds an Token option to the configuration
func WithToken(token string) ConfigOption {
	return func(config *RemoteConfig) error {
		config.Token = token
		return nil
	}
}

// WithRegion adds an Region option to the configuration
func WithRegion(region string) ConfigOption {
	return func(config *RemoteConfig) error {
		config.Region = region
		return nil
	}
}

// WithQueue adds an Queue option to the configuration
func WithQueue(queue string) ConfigOption {
	return func(config *RemoteConfig) error {
		config.Queue = queue
		return nil
	}
}

// WithDeadLetterQueue adds an DeadLetterQueue option to the
// configuration
func WithDeadLetterQueue(queue string) ConfigOption {
	return func(config *RemoteConfig) error {
		config.DeadLetterQueue = queue
		return nil
	}
}

// WithMaxNumberOfMessages adds an MaxNumberOfMessages option to the
// configuration
func WithMaxNumberOfMessages(numOfMessages int64) ConfigOption {
	return func(config *RemoteConfig) error {
		config.MaxNumberOfMessages = numOfMessages
		return nil
	}
}

// WithVisibilityTimeout adds an VisibilityTimeout option to the
// configuration
func WithVisibilityTimeout(visibilityTimeout time.Duration) ConfigOption {
	return func(config *RemoteConfig) error {
		config.VisibilityTimeout = visibilityTimeout
		return nil
	}
}

// WithExecutor adds a management link executor to the configuration
func WithExecutor(executor mgmt.Executor) ConfigOption {
	return func(config *RemoteConfig) error {
		config.Executor = executor
		return nil
	}
}
