package models

import "github.com/pkg/errors"

// ReceiveMode describes how deliveries are settled with the broker.
type ReceiveMode int

const (
	// PeekLock delivers a message under an exclusive lock which stays
	// pending on the broker until explicitly settled, or until the lock
	// expires.
	PeekLock ReceiveMode = iota

	// ReceiveAndDelete removes a message from the broker the moment it
	// is delivered. No lock or settlement is involved.
	ReceiveAndDelete
)

func (m ReceiveMode) String() string {
	switch m {
	case PeekLock:
		return "peeklock"
	case ReceiveAndDelete:
		return "receivedelete"
	default:
		return "unknown"
	}
}

// ParseReceiveMode attempts to parse a receive mode from its textual
// representation, or returns an error on failure.
func ParseReceiveMode(s string) (ReceiveMode, error) {
	switch s {
	case "peeklock":
		return PeekLock, nil
	case "receivedelete":
		return ReceiveAndDelete, nil
	default:
		return PeekLock, errors.Errorf("unexpected receive mode %q", s)
	}
}
