package transport

import (
	"context"
	"math/rand"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trussle/collector/pkg/mgmt"
	"github.com/trussle/collector/pkg/models"
	"github.com/trussle/collector/pkg/uuid"
)

const (
	defaultLockDuration = time.Minute
)

type virtualMessage struct {
	sequenceNumber int64
	messageID      string
	body           []byte
	lockToken      uuid.UUID
	lockedUntil    time.Time
}

// Virtual is an in-process broker implementing the full transport
// capability set, including the management vocabulary. It exists for
// testing and local development; all of its state is lost on exit.
type Virtual struct {
	mutex        sync.Mutex
	rnd          *rand.Rand
	now          func() time.Time
	mode         models.ReceiveMode
	lockDuration time.Duration
	nextSequence int64
	pending      []*virtualMessage
	locked       map[uuid.UUID]*virtualMessage
	deferred     map[int64]*virtualMessage
	deadLettered []*virtualMessage
	sessionState map[string][]byte
	sessionLocks map[string]time.Time
}

func newVirtualTransport(mode models.ReceiveMode, lockDuration time.Duration) *Virtual {
	if lockDuration <= 0 {
		lockDuration = defaultLockDuration
	}
	return &Virtual{
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
		now:          time.Now,
		mode:         mode,
		lockDuration: lockDuration,
		nextSequence: 1,
		locked:       make(map[uuid.UUID]*virtualMessage),
		deferred:     make(map[int64]*virtualMessage),
		sessionState: make(map[string][]byte),
		sessionLocks: make(map[string]time.Time),
	}
}

// NewVirtual creates a virtual transport for the given receive mode.
func NewVirtual(mode models.ReceiveMode, lockDuration time.Duration) *Virtual {
	return newVirtualTransport(mode, lockDuration)
}

// Enqueue makes a message available for delivery, returning its
// broker-assigned sequence number.
func (v *Virtual) Enqueue(body []byte) int64 {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	msg := &virtualMessage{
		sequenceNumber: v.nextSequence,
		messageID:      uuid.MustNew(v.rnd).String(),
		body:           append([]byte(nil), body...),
	}
	v.nextSequence++
	v.pending = append(v.pending, msg)
	return msg.sequenceNumber
}

// DeadLettered returns the messages that were moved to the dead-letter
// sub-queue.
func (v *Virtual) DeadLettered() []models.Message {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	res := make([]models.Message, len(v.deadLettered))
	for k, m := range v.deadLettered {
		res[k] = v.materialise(m)
	}
	return res
}

func (v *Virtual) Receive(ctx context.Context, maxCount, prefetch int) ([]models.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v.mutex.Lock()
	defer v.mutex.Unlock()

	v.expireLocks()

	amount := maxCount
	if amount > len(v.pending) {
		amount = len(v.pending)
	}

	res := make([]models.Message, 0, amount)
	for _, m := range v.pending[:amount] {
		if v.mode == models.PeekLock {
			v.lock(m)
		}
		res = append(res, v.materialise(m))
	}
	v.pending = v.pending[amount:]
	return res, nil
}

func (v *Virtual) ReceiveBySequenceNumbers(ctx context.Context, numbers []int64) ([]models.Message, error) {
	res, err := v.ExecuteManagementRequest(ctx,
		mgmt.NewReceiveBySequenceNumberRequest(v.lockDuration, numbers, v.mode),
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

func (v *Virtual) Complete(ctx context.Context, tokens []uuid.UUID) error {
	return v.updateDisposition(ctx, mgmt.NewUpdateDispositionRequest(v.lockDuration, tokens, models.Completed))
}

func (v *Virtual) Abandon(ctx context.Context, tokens []uuid.UUID) error {
	return v.updateDisposition(ctx, mgmt.NewUpdateDispositionRequest(v.lockDuration, tokens, models.Abandoned))
}

func (v *Virtual) Defer(ctx context.Context, tokens []uuid.UUID) error {
	return v.updateDisposition(ctx, mgmt.NewUpdateDispositionRequest(v.lockDuration, tokens, models.Deferred))
}

func (v *Virtual) DeadLetter(ctx context.Context, tokens []uuid.UUID, reason, description string) error {
	return v.updateDisposition(ctx, mgmt.NewDeadLetterRequest(v.lockDuration, tokens, reason, description))
}

func (v *Virtual) RenewLock(ctx context.Context, token uuid.UUID) (time.Time, error) {
	res, err := v.ExecuteManagementRequest(ctx,
		mgmt.NewRenewLockRequest(v.lockDuration, []uuid.UUID{token}),
	)
	if err != nil {
		return time.Time{}, err
	}
	return renewedExpiration(res)
}

// renewedExpiration pulls the first expiration out of a renew-lock
// response, failing when the broker reported an error or the response
// carried no expirations at all.
func renewedExpiration(res mgmt.Response) (time.Time, error) {
	if err := res.Err(); err != nil {
		return time.Time{}, err
	}

	expirations, _ := res.Properties[mgmt.FieldExpirations].([]time.Time)
	if len(expirations) == 0 {
		return time.Time{}, errors.Errorf("renew lock response carried no expirations")
	}
	return expirations[0], nil
}

// ExecuteManagementRequest dispatches a named operation against the
// in-process broker state. Unknown operations report back as a broker
// failure, never as a transport one.
func (v *Virtual) ExecuteManagementRequest(ctx context.Context, req mgmt.Request) (mgmt.Response, error) {
	if err := ctx.Err(); err != nil {
		return mgmt.Response{}, err
	}

	v.mutex.Lock()
	defer v.mutex.Unlock()

	v.expireLocks()

	switch req.Operation {
	case mgmt.OpUpdateDisposition:
		return v.handleUpdateDisposition(req), nil
	case mgmt.OpRenewLock:
		return v.handleRenewLock(req), nil
	case mgmt.OpReceiveBySequenceNumber:
		return v.handleReceiveBySequenceNumber(req), nil
	case mgmt.OpPeekMessage:
		return v.handlePeek(req), nil
	case mgmt.OpRenewSessionLock:
		return v.handleRenewSessionLock(req), nil
	case mgmt.OpGetSessionState:
		return v.handleGetSessionState(req), nil
	case mgmt.OpSetSessionState:
		return v.handleSetSessionState(req), nil
	default:
		return mgmt.Response{
			StatusCode:        http.StatusBadRequest,
			StatusDescription: "unknown operation " + req.Operation,
			ErrorCondition:    "amqp:not-implemented",
		}, nil
	}
}

func (v *Virtual) updateDisposition(ctx context.Context, req mgmt.Request) error {
	res, err := v.ExecuteManagementRequest(ctx, req)
	if err != nil {
		return err
	}
	return res.Err()
}

func (v *Virtual) handleUpdateDisposition(req mgmt.Request) mgmt.Response {
	tokens, err := requestTokens(req)
	if err != nil {
		return badRequest(err.Error())
	}

	disposition := models.Disposition(stringProperty(req, mgmt.FieldDispositionStatus))

	// Validate the whole batch before touching anything, a settlement
	// batch applies all-or-nothing.
	for _, token := range tokens {
		if _, ok := v.locked[token]; !ok {
			return lockLost(token)
		}
	}

	for _, token := range tokens {
		msg := v.locked[token]
		delete(v.locked, token)
		msg.lockToken = uuid.Empty
		msg.lockedUntil = time.Time{}

		switch disposition {
		case models.Completed:
			// Gone for good.
		case models.Abandoned:
			v.pending = append(v.pending, msg)
		case models.Deferred:
			v.deferred[msg.sequenceNumber] = msg
		case models.Suspended:
			v.deadLettered = append(v.deadLettered, msg)
		default:
			return badRequest("unknown disposition " + disposition.String())
		}
	}

	return ok()
}

func (v *Virtual) handleRenewLock(req mgmt.Request) mgmt.Response {
	tokens, err := requestTokens(req)
	if err != nil {
		return badRequest(err.Error())
	}

	for _, token := range tokens {
		if _, ok := v.locked[token]; !ok {
			return lockLost(token)
		}
	}

	expirations := make([]time.Time, len(tokens))
	for k, token := range tokens {
		msg := v.locked[token]
		msg.lockedUntil = v.now().Add(v.lockDuration)
		expirations[k] = msg.lockedUntil
	}

	res := ok()
	res.Properties[mgmt.FieldExpirations] = expirations
	return res
}

func (v *Virtual) handleReceiveBySequenceNumber(req mgmt.Request) mgmt.Response {
	numbers, _ := req.Properties[mgmt.FieldSequenceNumbers].([]int64)

	// Entries that are no longer retrievable are simply absent.
	msgs := make([]models.Message, 0, len(numbers))
	for _, n := range numbers {
		msg, found := v.deferred[n]
		if !found {
			continue
		}
		delete(v.deferred, n)
		v.lock(msg)
		msgs = append(msgs, v.materialise(msg))
	}

	res := ok()
	res.Properties[mgmt.FieldMessages] = msgs
	return res
}

func (v *Virtual) handlePeek(req mgmt.Request) mgmt.Response {
	var (
		from      = int64Property(req, mgmt.FieldFromSequenceNumber)
		count     = int(int32Property(req, mgmt.FieldMessageCount))
		browsable []*virtualMessage
	)

	browsable = append(browsable, v.pending...)
	for _, msg := range v.deferred {
		browsable = append(browsable, msg)
	}
	for _, msg := range v.locked {
		browsable = append(browsable, msg)
	}
	sort.Slice(browsable, func(i, j int) bool {
		return browsable[i].sequenceNumber < browsable[j].sequenceNumber
	})

	msgs := make([]models.Message, 0, count)
	for _, msg := range browsable {
		if msg.sequenceNumber < from {
			continue
		}
		if len(msgs) == count {
			break
		}
		// Peeked messages carry no lock.
		msgs = append(msgs, NewMessage(
			msg.sequenceNumber,
			uuid.Empty,
			time.Time{},
			msg.messageID,
			msg.body,
		))
	}

	res := ok()
	if len(msgs) == 0 {
		res.StatusCode = http.StatusNoContent
	}
	res.Properties[mgmt.FieldMessages] = msgs
	return res
}

func (v *Virtual) handleRenewSessionLock(req mgmt.Request) mgmt.Response {
	sessionID := stringProperty(req, mgmt.FieldSessionID)
	if sessionID == "" {
		return badRequest("session-id required")
	}

	expiry := v.now().Add(v.lockDuration)
	v.sessionLocks[sessionID] = expiry

	res := ok()
	res.Properties[mgmt.FieldExpiration] = expiry
	return res
}

func (v *Virtual) handleGetSessionState(req mgmt.Request) mgmt.Response {
	sessionID := stringProperty(req, mgmt.FieldSessionID)
	if sessionID == "" {
		return badRequest("session-id required")
	}

	res := ok()
	res.Properties[mgmt.FieldSessionState] = v.sessionState[sessionID]
	return res
}

func (v *Virtual) handleSetSessionState(req mgmt.Request) mgmt.Response {
	sessionID := stringProperty(req, mgmt.FieldSessionID)
	if sessionID == "" {
		return badRequest("session-id required")
	}

	state, _ := req.Properties[mgmt.FieldSessionState].([]byte)
	v.sessionState[sessionID] = append([]byte(nil), state...)
	return ok()
}

// lock assigns a fresh token, callers hold the mutex.
func (v *Virtual) lock(msg *virtualMessage) {
	msg.lockToken = uuid.MustNew(v.rnd)
	msg.lockedUntil = v.now().Add(v.lockDuration)
	v.locked[msg.lockToken] = msg
}

// expireLocks releases expired deliveries back to pending, callers
// hold the mutex.
func (v *Virtual) expireLocks() {
	now := v.now()

	var expired []*virtualMessage
	for token, msg := range v.locked {
		if msg.lockedUntil.After(now) {
			continue
		}
		delete(v.locked, token)
		msg.lockToken = uuid.Empty
		msg.lockedUntil = time.Time{}
		expired = append(expired, msg)
	}

	sort.Slice(expired, func(i, j int) bool {
		return expired[i].sequenceNumber < expired[j].sequenceNumber
	})
	v.pending = append(v.pending, expired...)
}

func (v *Virtual) materialise(msg *virtualMessage) models.Message {
	return NewMessage(
		msg.sequenceNumber,
		msg.lockToken,
		msg.lockedUntil,
		msg.messageID,
		msg.body,
	)
}

func requestTokens(req mgmt.Request) ([]uuid.UUID, error) {
	raw, _ := req.Properties[mgmt.FieldLockTokens].([][]byte)
	tokens := make([]uuid.UUID, len(raw))
	for k, v := range raw {
		token, err := uuid.FromRaw(v)
		if err != nil {
			return nil, err
		}
		tokens[k] = token
	}
	return tokens, nil
}

func stringProperty(req mgmt.Request, key string) string {
	s, _ := req.Properties[key].(string)
	return s
}

func int64Property(req mgmt.Request, key string) int64 {
	n, _ := req.Properties[key].(int64)
	return n
}

func int32Property(req mgmt.Request, key string) int32 {
	n, _ := req.Properties[key].(int32)
	return n
}

func ok() mgmt.Response {
	return mgmt.Response{
		StatusCode: http.StatusOK,
		Properties: make(map[string]interface{}),
	}
}

func badRequest(description string) mgmt.Response {
	return mgmt.Response{
		StatusCode:        http.StatusBadRequest,
		StatusDescription: description,
		ErrorCondition:    "amqp:invalid-field",
		Properties:        make(map[string]interface{}),
	}
}

func lockLost(token uuid.UUID) mgmt.Response {
	return mgmt.Response{
		StatusCode:        http.StatusGone,
		StatusDescription: "lock " + token.String() + " is no longer valid",
		ErrorCondition:    "com.microsoft:message-lock-lost",
		Properties:        make(map[string]interface{}),
	}
}
