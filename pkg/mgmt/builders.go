package mgmt

import (
	"time"

	"github.com/trussle/collector/pkg/models"
	"github.com/trussle/collector/pkg/uuid"
)

// NewRenewLockRequest builds a renew-lock request for a batch of lock
// tokens. The broker replies with the new expirations, in order.
func NewRenewLockRequest(timeout time.Duration, tokens []uuid.UUID) Request {
	req := NewRequest(OpRenewLock)
	req.Properties[FieldServerTimeout] = timeout
	req.Properties[FieldLockTokens] = rawTokens(tokens)
	return req
}

// NewReceiveBySequenceNumberRequest builds a request that re-delivers
// specific deferred or previously received messages.
func NewReceiveBySequenceNumberRequest(timeout time.Duration, numbers []int64, mode models.ReceiveMode) Request {
	req := NewRequest(OpReceiveBySequenceNumber)
	req.Properties[FieldServerTimeout] = timeout
	req.Properties[FieldSequenceNumbers] = numbers
	req.Properties[FieldReceiverSettleMode] = settleMode(mode)
	return req
}

// NewUpdateDispositionRequest builds a settlement request for a batch
// of lock tokens.
func NewUpdateDispositionRequest(timeout time.Duration, tokens []uuid.UUID, d models.Disposition) Request {
	req := NewRequest(OpUpdateDisposition)
	req.Properties[FieldServerTimeout] = timeout
	req.Properties[FieldLockTokens] = rawTokens(tokens)
	req.Properties[FieldDispositionStatus] = d.String()
	return req
}

// NewDeadLetterRequest builds a settlement request that moves the
// deliveries to the dead-letter sub-queue, carrying the reason for
// doing so.
func NewDeadLetterRequest(timeout time.Duration, tokens []uuid.UUID, reason, description string) Request {
	req := NewUpdateDispositionRequest(timeout, tokens, models.Suspended)
	req.Properties[FieldDeadLetterReason] = reason
	req.Properties[FieldDeadLetterDescription] = description
	return req
}

// NewPeekRequest builds a non-destructive browse request starting at
// the given sequence number.
func NewPeekRequest(timeout time.Duration, fromSequenceNumber int64, messageCount int) Request {
	req := NewRequest(OpPeekMessage)
	req.Properties[FieldServerTimeout] = timeout
	req.Properties[FieldFromSequenceNumber] = fromSequenceNumber
	req.Properties[FieldMessageCount] = int32(messageCount)
	return req
}

// NewRenewSessionLockRequest builds a renew request for a session lock.
func NewRenewSessionLockRequest(timeout time.Duration, sessionID string) Request {
	req := NewRequest(OpRenewSessionLock)
	req.Properties[FieldServerTimeout] = timeout
	req.Properties[FieldSessionID] = sessionID
	return req
}

// NewGetSessionStateRequest builds a request for the opaque state
// associated with a session.
func NewGetSessionStateRequest(timeout time.Duration, sessionID string) Request {
	req := NewRequest(OpGetSessionState)
	req.Properties[FieldServerTimeout] = timeout
	req.Properties[FieldSessionID] = sessionID
	return req
}

// NewSetSessionStateRequest builds a request that replaces the opaque
// state associated with a session.
func NewSetSessionStateRequest(timeout time.Duration, sessionID string, state []byte) Request {
	req := NewRequest(OpSetSessionState)
	req.Properties[FieldServerTimeout] = timeout
	req.Properties[FieldSessionID] = sessionID
	req.Properties[FieldSessionState] = state
	return req
}

// Lock tokens travel in raw binary form on the wire.
func rawTokens(tokens []uuid.UUID) [][]byte {
	res := make([][]byte, len(tokens))
	for k, v := range tokens {
		res[k] = v.Bytes()
	}
	return res
}

func settleMode(mode models.ReceiveMode) uint8 {
	if mode == models.ReceiveAndDelete {
		return 0
	}
	return 1
}
