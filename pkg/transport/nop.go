package transport

import (
	"context"
	"time"

	"github.com/trussle/collector/pkg/mgmt"
	"github.com/trussle/collector/pkg/models"
	"github.com/trussle/collector/pkg/receiver"
	"github.com/trussle/collector/pkg/uuid"
)

type nopTransport struct{}

// NewNopTransport creates a transport that accepts every operation and
// never yields a message.
func NewNopTransport() receiver.Transport {
	return nopTransport{}
}

func (nopTransport) Receive(ctx context.Context, maxCount, prefetch int) ([]models.Message, error) {
	return nil, nil
}

func (nopTransport) ReceiveBySequenceNumbers(ctx context.Context, numbers []int64) ([]models.Message, error) {
	return nil, nil
}

func (nopTransport) Complete(ctx context.Context, tokens []uuid.UUID) error { return nil }

func (nopTransport) Abandon(ctx context.Context, tokens []uuid.UUID) error { return nil }

func (nopTransport) Defer(ctx context.Context, tokens []uuid.UUID) error { return nil }

func (nopTransport) DeadLetter(ctx context.Context, tokens []uuid.UUID, reason, description string) error {
	return nil
}

func (nopTransport) RenewLock(ctx context.Context, token uuid.UUID) (time.Time, error) {
	return time.Now(), nil
}

func (nopTransport) ExecuteManagementRequest(ctx context.Context, req mgmt.Request) (mgmt.Response, error) {
	return mgmt.Response{StatusCode: 200, StatusDescription: "OK"}, nil
}

var _ receiver.Transport = nopTransport{}
