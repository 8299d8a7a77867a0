// Package receiver implements the client-side contract for consuming
// messages from a broker entity under at-least-once delivery. The
// Receiver orchestrates validation, mode guarding and telemetry around
// a set of transport hooks; it never interprets transport failures and
// it never caches broker state.
package receiver

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/trussle/collector/pkg/mgmt"
	"github.com/trussle/collector/pkg/models"
	"github.com/trussle/collector/pkg/telemetry"
	"github.com/trussle/collector/pkg/uuid"
)

const (
	defaultOperationTimeout = time.Minute
)

// Transport is the capability set a transport-specific variant
// provides. Implementations perform the actual network exchange; they
// may fail with a transport-kind error, which the Receiver surfaces
// unmodified.
type Transport interface {

	// Receive up to maxCount messages, or none within the deadline.
	// Prefetch carries the receiver's current prefetch count for the
	// transport to apply.
	Receive(ctx context.Context, maxCount, prefetch int) ([]models.Message, error)

	// ReceiveBySequenceNumbers re-requests specific deferred or
	// previously received messages. Entries that are already settled
	// or expired are simply absent from the result.
	ReceiveBySequenceNumbers(ctx context.Context, numbers []int64) ([]models.Message, error)

	// Complete settles the deliveries, the broker removes the messages
	// permanently
	Complete(ctx context.Context, tokens []uuid.UUID) error

	// Abandon releases the locks, the messages become immediately
	// redeliverable
	Abandon(ctx context.Context, tokens []uuid.UUID) error

	// Defer parks the deliveries for retrieval by sequence number
	Defer(ctx context.Context, tokens []uuid.UUID) error

	// DeadLetter moves the deliveries to the dead-letter sub-queue
	DeadLetter(ctx context.Context, tokens []uuid.UUID, reason, description string) error

	// RenewLock extends a single delivery lock, returning the new
	// absolute expiry
	RenewLock(ctx context.Context, token uuid.UUID) (time.Time, error)

	// ExecuteManagementRequest performs a named operation against the
	// broker's management endpoint, pass-through
	ExecuteManagementRequest(ctx context.Context, req mgmt.Request) (mgmt.Response, error)
}

// Receiver represents one logical consumer bound to one entity path.
//
// Operations follow an identical template: validate, guard when the
// operation requires a lock, emit start telemetry, invoke the
// transport hook bounded by the operation timeout, then emit stop or
// exception telemetry and hand the result back untouched. All
// precondition failures are raised before any telemetry start event
// and before any transport work.
//
// Concurrent use by multiple goroutines is allowed and not serialized
// here; any required serialization is a transport concern.
type Receiver struct {
	mutex      sync.Mutex
	entityPath string
	mode       models.ReceiveMode
	prefetch   int
	timeout    time.Duration
	clientID   string
	transport  Transport
	sink       telemetry.Sink
}

// Option defines a option for generating a Receiver
type Option func(*Receiver) error

// WithMode configures the receive mode, immutable after construction.
func WithMode(mode models.ReceiveMode) Option {
	return func(r *Receiver) error {
		r.mode = mode
		return nil
	}
}

// WithOperationTimeout bounds every transport hook invocation.
func WithOperationTimeout(timeout time.Duration) Option {
	return func(r *Receiver) error {
		if timeout <= 0 {
			return NewInvalidArgument("operation timeout must be positive")
		}
		r.timeout = timeout
		return nil
	}
}

// WithSink configures the telemetry sink observing each operation.
func WithSink(sink telemetry.Sink) Option {
	return func(r *Receiver) error {
		r.sink = sink
		return nil
	}
}

// WithClientID overrides the generated client identifier used in
// telemetry events.
func WithClientID(clientID string) Option {
	return func(r *Receiver) error {
		r.clientID = clientID
		return nil
	}
}

// New creates a Receiver bound to the entity path, delegating all
// network work to the transport.
func New(entityPath string, transport Transport, opts ...Option) (*Receiver, error) {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	r := &Receiver{
		entityPath: entityPath,
		mode:       models.PeekLock,
		timeout:    defaultOperationTimeout,
		clientID:   fmt.Sprintf("receiver-%s-%s", entityPath, uuid.MustNew(rnd)),
		transport:  transport,
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if r.sink == nil {
		sink, err := telemetry.Build(telemetry.With("nop"))
		if err != nil {
			return nil, err
		}
		if r.sink, err = telemetry.New(sink); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// EntityPath returns the path of the entity this receiver consumes
// from.
func (r *Receiver) EntityPath() string { return r.entityPath }

// Mode returns the receive mode the receiver was constructed with.
func (r *Receiver) Mode() models.ReceiveMode { return r.mode }

// ClientID returns the identifier used in telemetry events.
func (r *Receiver) ClientID() string { return r.clientID }

// OperationTimeout returns the bound applied to every hook invocation.
func (r *Receiver) OperationTimeout() time.Duration { return r.timeout }

// PrefetchCount returns the number of messages the transport may
// buffer ahead of explicit receive calls.
func (r *Receiver) PrefetchCount() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.prefetch
}

// SetPrefetchCount stores the prefetch count for the transport to
// apply on subsequent receive calls. It does not retroactively affect
// in-flight receives.
func (r *Receiver) SetPrefetchCount(count int) error {
	if count < 0 {
		return NewInvalidArgument("prefetch count must be non-negative")
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.prefetch = count
	return nil
}

// Receive asks the transport for up to maxCount messages. An empty
// result means none became available within the operation timeout.
func (r *Receiver) Receive(ctx context.Context, maxCount int) ([]models.Message, error) {
	if maxCount < 1 {
		return nil, NewInvalidArgument("max count must be at least one")
	}

	r.sink.Start(r.clientID, maxCount)

	ctx, cancel := r.opContext(ctx)
	defer cancel()

	msgs, err := r.transport.Receive(ctx, maxCount, r.PrefetchCount())
	if err != nil {
		r.sink.Exception(r.clientID, err)
		return nil, err
	}

	r.sink.Stop(r.clientID)
	return msgs, nil
}

// ReceiveOne returns the next message, or nil if none became available
// within the operation timeout.
func (r *Receiver) ReceiveOne(ctx context.Context) (models.Message, error) {
	msgs, err := r.Receive(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, nil
	}
	return msgs[0], nil
}

// ReceiveBySequenceNumbers re-requests specific deferred or previously
// received messages. Entries no longer retrievable are absent from the
// result, not an error.
func (r *Receiver) ReceiveBySequenceNumbers(ctx context.Context, numbers []int64) ([]models.Message, error) {
	count, err := ValidateSequenceNumbers(numbers)
	if err != nil {
		return nil, err
	}
	if err := RequirePeekLock(r.mode); err != nil {
		return nil, err
	}

	r.sink.Start(r.clientID, count)

	ctx, cancel := r.opContext(ctx)
	defer cancel()

	msgs, err := r.transport.ReceiveBySequenceNumbers(ctx, numbers)
	if err != nil {
		r.sink.Exception(r.clientID, err)
		return nil, err
	}

	r.sink.Stop(r.clientID)
	return msgs, nil
}

// Complete settles the deliveries named by the lock tokens; the broker
// removes the messages permanently.
func (r *Receiver) Complete(ctx context.Context, tokens []uuid.UUID) error {
	return r.settle(ctx, tokens, r.transport.Complete)
}

// Abandon releases the locks; the messages become immediately
// redeliverable.
func (r *Receiver) Abandon(ctx context.Context, tokens []uuid.UUID) error {
	return r.settle(ctx, tokens, r.transport.Abandon)
}

// Defer parks the deliveries; the messages become retrievable only by
// sequence number thereafter.
func (r *Receiver) Defer(ctx context.Context, tokens []uuid.UUID) error {
	return r.settle(ctx, tokens, r.transport.Defer)
}

// DeadLetter moves the deliveries to the dead-letter sub-queue.
func (r *Receiver) DeadLetter(ctx context.Context, tokens []uuid.UUID) error {
	return r.DeadLetterWithReason(ctx, tokens, "", "")
}

// DeadLetterWithReason moves the deliveries to the dead-letter
// sub-queue, recording why.
func (r *Receiver) DeadLetterWithReason(ctx context.Context, tokens []uuid.UUID, reason, description string) error {
	return r.settle(ctx, tokens, func(ctx context.Context, tokens []uuid.UUID) error {
		return r.transport.DeadLetter(ctx, tokens, reason, description)
	})
}

// RenewLock extends the delivery lock named by the token, returning
// the new absolute expiry.
func (r *Receiver) RenewLock(ctx context.Context, token uuid.UUID) (time.Time, error) {
	if token.Zero() {
		return time.Time{}, NewInvalidArgument("lock token must be non-null")
	}
	if err := RequirePeekLock(r.mode); err != nil {
		return time.Time{}, err
	}

	r.sink.Start(r.clientID, token)

	ctx, cancel := r.opContext(ctx)
	defer cancel()

	expiry, err := r.transport.RenewLock(ctx, token)
	if err != nil {
		r.sink.Exception(r.clientID, err)
		return time.Time{}, err
	}

	r.sink.Stop(r.clientID)
	return expiry, nil
}

// ExecuteManagementRequest performs a named management operation. This
// is the low-level escape hatch used to implement session-state
// get/set and other named operations; the request passes through with
// no additional validation.
func (r *Receiver) ExecuteManagementRequest(ctx context.Context, req mgmt.Request) (mgmt.Response, error) {
	r.sink.Start(r.clientID, req.Operation)

	ctx, cancel := r.opContext(ctx)
	defer cancel()

	res, err := r.transport.ExecuteManagementRequest(ctx, req)
	if err != nil {
		r.sink.Exception(r.clientID, err)
		return mgmt.Response{}, err
	}

	r.sink.Stop(r.clientID)
	return res, nil
}

// Peek browses messages from the given sequence number without
// locking or settling them. Allowed in both receive modes.
func (r *Receiver) Peek(ctx context.Context, fromSequenceNumber int64, messageCount int) ([]models.Message, error) {
	if messageCount < 1 {
		return nil, NewInvalidArgument("message count must be at least one")
	}

	res, err := r.ExecuteManagementRequest(ctx,
		mgmt.NewPeekRequest(r.timeout, fromSequenceNumber, messageCount),
	)
	if err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}

	msgs, _ := res.Properties[mgmt.FieldMessages].([]models.Message)
	return msgs, nil
}

func (r *Receiver) settle(ctx context.Context, tokens []uuid.UUID, fn func(context.Context, []uuid.UUID) error) error {
	count, err := ValidateLockTokens(tokens)
	if err != nil {
		return err
	}
	if err := RequirePeekLock(r.mode); err != nil {
		return err
	}

	r.sink.Start(r.clientID, count)

	ctx, cancel := r.opContext(ctx)
	defer cancel()

	if err := fn(ctx, tokens); err != nil {
		r.sink.Exception(r.clientID, err)
		return err
	}

	r.sink.Stop(r.clientID)
	return nil
}

func (r *Receiver) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}
