// Package mgmt holds the vocabulary of the broker's management
// endpoint: the named operations a receiver can invoke over the
// request/response channel, and the property keys each of them
// carries. The string values are a versioned wire contract and must
// match the broker's expectations verbatim.
package mgmt

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
)

// Operation identifiers, vendor-namespaced to avoid collision.
const (
	OpRenewLock               = "com.microsoft:renew-lock"
	OpReceiveBySequenceNumber = "com.microsoft:receive-by-sequence-number"
	OpUpdateDisposition       = "com.microsoft:update-disposition"
	OpRenewSessionLock        = "com.microsoft:renew-session-lock"
	OpSetSessionState         = "com.microsoft:set-session-state"
	OpGetSessionState         = "com.microsoft:get-session-state"
	OpPeekMessage             = "com.microsoft:peek-message"
)

// Request property keys.
const (
	FieldServerTimeout         = "server-timeout"
	FieldTrackingID            = "com.microsoft:tracking-id"
	FieldLockToken             = "lock-token"
	FieldLockTokens            = "lock-tokens"
	FieldSequenceNumbers       = "sequence-numbers"
	FieldExpirations           = "expirations"
	FieldExpiration            = "expiration"
	FieldSessionID             = "session-id"
	FieldSessionState          = "session-state"
	FieldReceiverSettleMode    = "receiver-settle-mode"
	FieldDispositionStatus     = "disposition-status"
	FieldDeadLetterReason      = "deadletter-reason"
	FieldDeadLetterDescription = "deadletter-description"
	FieldFromSequenceNumber    = "from-sequence-number"
	FieldMessageCount          = "message-count"
	FieldMessages              = "messages"
	FieldMessage               = "message"
)

// Request represents one named operation against the management
// endpoint. Properties carries the operation's arguments keyed by the
// Field constants above.
type Request struct {
	Operation  string
	Properties map[string]interface{}
}

// NewRequest creates a Request for the named operation with an empty
// property bag.
func NewRequest(operation string) Request {
	return Request{
		Operation:  operation,
		Properties: make(map[string]interface{}),
	}
}

// Response represents the broker's reply to a management request. The
// status code follows http conventions; a non 2xx code together with
// the error condition describes a broker-reported failure, which is
// distinct from any transport-level failure.
type Response struct {
	StatusCode        int
	StatusDescription string
	ErrorCondition    string
	Properties        map[string]interface{}
}

// Ok returns if the broker reported the operation as successful.
func (r Response) Ok() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// Err converts a broker-reported failure into an error, or returns nil
// if the response is successful.
func (r Response) Err() error {
	if r.Ok() {
		return nil
	}
	return errBroker{
		err: errors.Errorf("management operation failed (%d): %s",
			r.StatusCode,
			r.StatusDescription,
		),
		statusCode: r.StatusCode,
		condition:  r.ErrorCondition,
	}
}

// Executor performs named operations against the broker's management
// endpoint. How the request is framed on the wire is the executor's
// concern, not the receiver's.
type Executor interface {

	// Execute a management request, returning the broker's response.
	Execute(context.Context, Request) (Response, error)
}

type brokerError interface {
	Broker() bool
}

type errBroker struct {
	err        error
	statusCode int
	condition  string
}

func (e errBroker) Error() string     { return e.err.Error() }
func (e errBroker) Broker() bool      { return true }
func (e errBroker) StatusCode() int   { return e.statusCode }
func (e errBroker) Condition() string { return e.condition }

// ErrBroker tests to see if the error passed is a broker-reported
// failure or not.
func ErrBroker(err error) bool {
	if err != nil {
		if _, ok := err.(brokerError); ok {
			return true
		}
	}
	return false
}
