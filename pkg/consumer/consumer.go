package consumer

import (
	"context"
	"sync"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/trussle/collector/pkg/audit"
	"github.com/trussle/collector/pkg/fifo"
	"github.com/trussle/collector/pkg/http"
	"github.com/trussle/collector/pkg/metrics"
	"github.com/trussle/collector/pkg/models"
	"github.com/trussle/collector/pkg/receiver"
	"github.com/trussle/collector/pkg/uuid"
)

const (
	defaultBatchSize     = 10
	defaultRenewBuffer   = 30 * time.Second
	defaultMaxDeliveries = 3
)

// Consumer reads deliveries from the receiver and forwards their bodies
// to the recipient endpoint. It's implemented as a state machine: gather
// deliveries, renew lapsing locks, forward, settle, and repeat. A
// forwarding failure invalidates the entire batch.
type Consumer struct {
	mutex             sync.Mutex
	client            *http.Client
	receiver          *receiver.Receiver
	auditLog          audit.Log
	inflight          *fifo.FIFO
	renewals          map[uuid.UUID]time.Time
	failures          map[int64]int
	gatherErrors      int
	batchSize         int
	maxDeliveries     int
	renewBuffer       time.Duration
	stop              chan chan struct{}
	consumedMessages  metrics.Counter
	forwardedMessages metrics.Counter
	settledMessages   metrics.Counter
	abandonedMessages metrics.Counter
	renewedLocks      metrics.Counter
	logger            log.Logger
}

// New creates a consumer.
func New(
	client *http.Client,
	r *receiver.Receiver,
	auditLog audit.Log,
	consumedMessages, forwardedMessages metrics.Counter,
	settledMessages, abandonedMessages metrics.Counter,
	renewedLocks metrics.Counter,
	logger log.Logger,
) *Consumer {
	consumer := &Consumer{
		mutex:             sync.Mutex{},
		client:            client,
		receiver:          r,
		auditLog:          auditLog,
		renewals:          make(map[uuid.UUID]time.Time),
		failures:          make(map[int64]int),
		gatherErrors:      0,
		batchSize:         defaultBatchSize,
		maxDeliveries:     defaultMaxDeliveries,
		renewBuffer:       defaultRenewBuffer,
		stop:              make(chan chan struct{}),
		consumedMessages:  consumedMessages,
		forwardedMessages: forwardedMessages,
		settledMessages:   settledMessages,
		abandonedMessages: abandonedMessages,
		renewedLocks:      renewedLocks,
		logger:            logger,
	}
	consumer.inflight = fifo.NewFIFO(consumer.onElementEviction)
	return consumer
}

// Run gathers deliveries from the receiver, and forwards them to the
// endpoint. Run returns when Stop is invoked.
func (c *Consumer) Run() {
	step := time.NewTicker(100 * time.Millisecond)
	defer step.Stop()

	state := c.gather
	for {
		select {
		case <-step.C:
			state = state()

		case q := <-c.stop:
			if err := c.abandonAll(); err != nil {
				level.Warn(c.logger).Log("state", "stopping", "err", err)
			}
			close(q)
			return
		}
	}
}

// Stop the consumer from consuming.
func (c *Consumer) Stop() {
	q := make(chan struct{})
	c.stop <- q
	<-q
}

// stateFn is a lazy chaining mechism, similar to a trampoline, but via
// calls through Run.
type stateFn func() stateFn

func (c *Consumer) gather() stateFn {
	var (
		base = log.With(c.logger, "state", "gather")
		warn = level.Warn(base)
	)

	// A naïve way to break out of the gather loop in atypical conditions.
	if c.gatherErrors > 0 {
		if c.inflight.Len() == 0 {
			// We didn't successfully gather any deliveries.
			// Nothing to do but reset and try again.
			c.gatherErrors = 0
			return c.gather
		}
		// We gathered some deliveries, at least.
		// Press forward to the endpoint.
		return c.renew
	}

	// More typical exit clauses.
	if c.inflight.Len() >= c.batchSize {
		return c.renew
	}

	msgs, err := c.receiver.Receive(context.Background(), c.batchSize-c.inflight.Len())
	if err != nil {
		// Normal, when the broker has no more deliveries to give right now.
		// After enough of these errors, we should forward.
		warn.Log("reason", "receiving", "err", err)
		c.gatherErrors++
		return c.gather
	}
	if len(msgs) == 0 {
		c.gatherErrors++
		return c.gather
	}

	for _, msg := range msgs {
		c.inflight.Add(msg)
	}
	c.consumedMessages.Add(float64(len(msgs)))

	return c.gather
}

// renew extends the locks of gathered deliveries that would lapse
// before the batch makes it through forwarding.
func (c *Consumer) renew() stateFn {
	if c.receiver.Mode() != models.PeekLock {
		return c.forward
	}

	var (
		base = log.With(c.logger, "state", "renew")
		warn = level.Warn(base)

		threshold = time.Now().Add(c.renewBuffer)
	)

	for _, kv := range c.inflight.Expiring(threshold) {
		if expiry, ok := c.renewals[kv.Key]; ok && expiry.After(threshold) {
			continue
		}

		expiry, err := c.receiver.RenewLock(context.Background(), kv.Key)
		if err != nil {
			warn.Log("reason", "renewing", "err", err)
			continue
		}
		c.renewals[kv.Key] = expiry
		c.renewedLocks.Inc()
	}

	return c.forward
}

func (c *Consumer) forward() stateFn {
	var (
		base = log.With(c.logger, "state", "forward")
		warn = level.Warn(base)
	)

	for _, kv := range c.inflight.Slice() {
		if err := c.client.Send(context.Background(), kv.Value.Body()); err != nil {
			warn.Log("reason", "sending", "err", err)
			return c.failure
		}
		c.forwardedMessages.Inc()
	}

	return c.settle
}

func (c *Consumer) settle() stateFn {
	var (
		base = log.With(c.logger, "state", "settle")
		warn = level.Warn(base)
	)

	txn, tokens := c.drain(models.Completed)
	if len(tokens) == 0 {
		c.gatherErrors = 0
		return c.gather
	}

	if c.receiver.Mode() == models.PeekLock {
		if err := c.receiver.Complete(context.Background(), tokens); err != nil {
			warn.Log("reason", "completing", "err", err)
		} else {
			c.settledMessages.Add(float64(len(tokens)))
		}
	} else {
		c.settledMessages.Add(float64(len(tokens)))
	}

	if err := c.auditLog.Append(txn); err != nil {
		warn.Log("reason", "auditing", "err", err)
	}

	c.gatherErrors = 0
	return c.gather
}

func (c *Consumer) failure() stateFn {
	var (
		base = log.With(c.logger, "state", "failure")
		warn = level.Warn(base)
	)

	var (
		txn       = models.NewTransaction()
		abandoned []uuid.UUID
		poisoned  []uuid.UUID
	)
	c.inflight.Dequeue(func(token uuid.UUID, msg models.Message) error {
		c.failures[msg.SequenceNumber()]++
		delete(c.renewals, token)

		if c.failures[msg.SequenceNumber()] >= c.maxDeliveries {
			txn.Push(token, msg, models.Suspended)
			poisoned = append(poisoned, token)
			delete(c.failures, msg.SequenceNumber())
			return nil
		}
		txn.Push(token, msg, models.Abandoned)
		abandoned = append(abandoned, token)
		return nil
	})

	if c.receiver.Mode() == models.PeekLock {
		if len(poisoned) > 0 {
			err := c.receiver.DeadLetterWithReason(context.Background(), poisoned,
				"MaxDeliveryCountExceeded", "forwarding to the recipient kept failing")
			if err != nil {
				warn.Log("reason", "dead lettering", "err", err)
			}
		}
		if len(abandoned) > 0 {
			if err := c.receiver.Abandon(context.Background(), abandoned); err != nil {
				warn.Log("reason", "abandoning", "err", err)
			} else {
				c.abandonedMessages.Add(float64(len(abandoned)))
			}
		}
	}

	if txn.Len() > 0 {
		if err := c.auditLog.Append(txn); err != nil {
			warn.Log("reason", "auditing", "err", err)
		}
	}

	c.gatherErrors = 0
	return c.gather
}

// abandonAll releases every in-flight delivery back to the broker and
// records the outcome in the audit log.
func (c *Consumer) abandonAll() error {
	txn, tokens := c.drain(models.Abandoned)
	if len(tokens) == 0 {
		return nil
	}

	var err error
	if c.receiver.Mode() == models.PeekLock {
		if err = c.receiver.Abandon(context.Background(), tokens); err == nil {
			c.abandonedMessages.Add(float64(len(tokens)))
		}
	}

	if e := c.auditLog.Append(txn); e != nil && err == nil {
		err = e
	}
	return err
}

// drain empties the in-flight cache into a transaction carrying the
// given disposition.
func (c *Consumer) drain(d models.Disposition) (models.Transaction, []uuid.UUID) {
	var (
		txn    = models.NewTransaction()
		tokens = make([]uuid.UUID, 0, c.inflight.Len())
	)
	c.inflight.Dequeue(func(token uuid.UUID, msg models.Message) error {
		txn.Push(token, msg, d)
		tokens = append(tokens, token)
		if d == models.Completed {
			delete(c.failures, msg.SequenceNumber())
		}
		return nil
	})

	for _, token := range tokens {
		delete(c.renewals, token)
	}
	return txn, tokens
}

func (c *Consumer) onElementEviction(reason fifo.EvictionReason, key uuid.UUID, value models.Message) {
	switch reason {
	case fifo.Dequeued:
		// Normal batch drain.
	default:
		level.Debug(c.logger).Log("state", "eviction", "reason", int(reason), "token", key.String())
	}
}
