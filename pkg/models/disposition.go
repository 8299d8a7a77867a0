package models

// Disposition represents the terminal state a consumer assigns to a
// single delivery attempt. It is never stored locally, only sent to
// the broker, which owns the actual message state.
type Disposition string

const (
	// Completed settles the delivery, the broker removes the message
	// permanently.
	Completed Disposition = "completed"

	// Abandoned releases the lock, the message becomes immediately
	// redeliverable.
	Abandoned Disposition = "abandoned"

	// Deferred parks the message, it becomes retrievable only by
	// explicit sequence number lookup thereafter.
	Deferred Disposition = "defered"

	// Suspended moves the message to the dead-letter sub-queue.
	Suspended Disposition = "suspended"
)

func (d Disposition) String() string {
	return string(d)
}
