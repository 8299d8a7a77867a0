package models

import (
	"time"

	"github.com/trussle/collector/pkg/uuid"
)

// Message represents a single delivery from the underlying broker.
//
// A sequence number identifies the message itself (broker assigned,
// monotonic per entity), while the lock token identifies this
// particular delivery attempt. The lock token is only meaningful for
// receivers in peek-lock mode, and only until the lock expires; the
// broker owns the message state either way.
type Message interface {

	// SequenceNumber of the message, assigned by the broker
	SequenceNumber() int64

	// LockToken of this delivery attempt, empty in receive-and-delete
	// mode
	LockToken() uuid.UUID

	// LockedUntil is the absolute expiry of the delivery lock
	LockedUntil() time.Time

	// MessageID is the potential id from the underlying provider
	MessageID() string

	// Body is the payload of the message
	Body() []byte

	// Equal another Message or not
	Equal(Message) bool
}
