package receiver

import (
	"math/rand"
	"reflect"
	"time"

	"github.com/trussle/collector/pkg/mgmt"
	"github.com/trussle/collector/pkg/models"
	"github.com/trussle/collector/pkg/uuid"
)

type testMessage struct {
	sequenceNumber int64
	lockToken      uuid.UUID
	lockedUntil    time.Time
	messageID      string
	body           []byte
}

func newTestMessage(rnd *rand.Rand, sequenceNumber int64) models.Message {
	return testMessage{
		sequenceNumber: sequenceNumber,
		lockToken:      uuid.MustNew(rnd),
		lockedUntil:    time.Now().Add(time.Minute),
		messageID:      uuid.MustNew(rnd).String(),
		body:           []byte("payload"),
	}
}

func (m testMessage) SequenceNumber() int64  { return m.sequenceNumber }
func (m testMessage) LockToken() uuid.UUID   { return m.lockToken }
func (m testMessage) LockedUntil() time.Time { return m.lockedUntil }
func (m testMessage) MessageID() string      { return m.messageID }
func (m testMessage) Body() []byte           { return m.body }

func (m testMessage) Equal(other models.Message) bool {
	return other != nil &&
		m.SequenceNumber() == other.SequenceNumber() &&
		reflect.DeepEqual(m.Body(), other.Body())
}

func mgmtRequest() mgmt.Request {
	req := mgmt.NewRequest(mgmt.OpGetSessionState)
	req.Properties[mgmt.FieldSessionID] = "session-a"
	return req
}

func mgmtResponse(statusCode int) mgmt.Response {
	return mgmt.Response{
		StatusCode: statusCode,
		Properties: make(map[string]interface{}),
	}
}
