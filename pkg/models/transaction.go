package models

import "github.com/trussle/collector/pkg/uuid"

// Transaction represents a batch of settlements that belong together,
// so that they can be audited or retried as a unit.
type Transaction interface {

	// Push a delivery and its disposition on to the transaction
	Push(uuid.UUID, Message, Disposition) error

	// Walk over the settlements within the transaction
	Walk(func(uuid.UUID, Message, Disposition) error) error

	// Len returns the number of settlements within the transaction
	Len() int

	// Flush the transaction
	Flush() error
}

type settlement struct {
	Token       uuid.UUID
	Message     Message
	Disposition Disposition
}

type transaction struct {
	values []settlement
}

// NewTransaction creates a very simplistic settlement transaction
func NewTransaction() Transaction {
	return &transaction{}
}

func (t *transaction) Push(token uuid.UUID, msg Message, d Disposition) error {
	t.values = append(t.values, settlement{
		Token:       token,
		Message:     msg,
		Disposition: d,
	})
	return nil
}

func (t *transaction) Walk(fn func(uuid.UUID, Message, Disposition) error) error {
	for _, v := range t.values {
		if err := fn(v.Token, v.Message, v.Disposition); err != nil {
			return err
		}
	}
	return nil
}

func (t *transaction) Len() int { return len(t.values) }

func (t *transaction) Flush() error {
	t.values = t.values[:0]
	return nil
}
