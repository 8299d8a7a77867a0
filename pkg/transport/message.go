package transport

import (
	"math/rand"
	"reflect"
	"time"

	"github.com/trussle/collector/pkg/models"
	"github.com/trussle/collector/pkg/uuid"
)

type message struct {
	sequenceNumber int64
	lockToken      uuid.UUID
	lockedUntil    time.Time
	messageID      string
	body           []byte
}

// NewMessage is a default message implementation
func NewMessage(sequenceNumber int64,
	lockToken uuid.UUID,
	lockedUntil time.Time,
	messageID string,
	body []byte,
) models.Message {
	return message{
		sequenceNumber: sequenceNumber,
		lockToken:      lockToken,
		lockedUntil:    lockedUntil,
		messageID:      messageID,
		body:           body,
	}
}

func (m message) SequenceNumber() int64  { return m.sequenceNumber }
func (m message) LockToken() uuid.UUID   { return m.lockToken }
func (m message) LockedUntil() time.Time { return m.lockedUntil }
func (m message) MessageID() string      { return m.messageID }
func (m message) Body() []byte           { return m.body }

func (m message) Equal(other models.Message) bool {
	return other != nil &&
		m.SequenceNumber() == other.SequenceNumber() &&
		reflect.DeepEqual(m.Body(), other.Body())
}

// GenerateMessage creates a new locked message for use within
// quickcheck scenarios.
func GenerateMessage(rnd *rand.Rand, sequenceNumber int64) (models.Message, error) {
	token, err := uuid.New(rnd)
	if err != nil {
		return nil, err
	}
	id, err := uuid.New(rnd)
	if err != nil {
		return nil, err
	}

	body := make([]byte, rnd.Intn(10)+48)
	if _, err := rnd.Read(body); err != nil {
		return nil, err
	}

	return message{
		sequenceNumber: sequenceNumber,
		lockToken:      token,
		lockedUntil:    time.Now().Add(time.Minute).Round(time.Millisecond),
		messageID:      id.String(),
		body:           body,
	}, nil
}
