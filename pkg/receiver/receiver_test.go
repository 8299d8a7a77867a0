package receiver

import (
	"context"
	"math/rand"
	"testing"
	"testing/quick"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"

	"github.com/trussle/collector/pkg/models"
	"github.com/trussle/collector/pkg/receiver/mocks"
	telemetryMocks "github.com/trussle/collector/pkg/telemetry/mocks"
	"github.com/trussle/collector/pkg/uuid"
)

func TestNew(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("defaults", func(t *testing.T) {
		r, err := New("queue-a", mocks.NewMockTransport(ctrl))
		if err != nil {
			t.Fatal(err)
		}

		if expected, actual := "queue-a", r.EntityPath(); expected != actual {
			t.Errorf("expected: %s, actual: %s", expected, actual)
		}
		if expected, actual := models.PeekLock, r.Mode(); expected != actual {
			t.Errorf("expected: %v, actual: %v", expected, actual)
		}
		if expected, actual := 0, r.PrefetchCount(); expected != actual {
			t.Errorf("expected: %d, actual: %d", expected, actual)
		}
	})

	t.Run("invalid timeout", func(t *testing.T) {
		_, err := New("queue-a", mocks.NewMockTransport(ctrl),
			WithOperationTimeout(-time.Second),
		)
		if expected, actual := true, ErrInvalidArgument(err); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
	})
}

func TestPrefetchCount(t *testing.T) {
	t.Parallel()

	t.Run("negative", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		r, err := New("queue-a", mocks.NewMockTransport(ctrl))
		if err != nil {
			t.Fatal(err)
		}

		err = r.SetPrefetchCount(-1)
		if expected, actual := true, ErrInvalidArgument(err); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
	})

	t.Run("visible to the next receive", func(t *testing.T) {
		fn := func(count uint8) bool {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			transport := mocks.NewMockTransport(ctrl)
			transport.EXPECT().
				Receive(gomock.Any(), 1, int(count)).
				Return(nil, nil)

			r, err := New("queue-a", transport)
			if err != nil {
				t.Fatal(err)
			}

			if err := r.SetPrefetchCount(int(count)); err != nil {
				t.Fatal(err)
			}
			if expected, actual := int(count), r.PrefetchCount(); expected != actual {
				t.Errorf("expected: %d, actual: %d", expected, actual)
			}

			if _, err := r.Receive(context.Background(), 1); err != nil {
				t.Fatal(err)
			}

			return true
		}
		if err := quick.Check(fn, nil); err != nil {
			t.Error(err)
		}
	})
}

func TestReceive(t *testing.T) {
	t.Parallel()

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	t.Run("invalid max count", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		r, err := New("queue-a", mocks.NewMockTransport(ctrl))
		if err != nil {
			t.Fatal(err)
		}

		_, err = r.Receive(context.Background(), 0)
		if expected, actual := true, ErrInvalidArgument(err); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
	})

	t.Run("receive one with messages", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		msg := newTestMessage(rnd, 1)

		transport := mocks.NewMockTransport(ctrl)
		transport.EXPECT().
			Receive(gomock.Any(), 1, 0).
			Return([]models.Message{msg}, nil)

		r, err := New("queue-a", transport)
		if err != nil {
			t.Fatal(err)
		}

		got, err := r.ReceiveOne(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if expected, actual := true, msg.Equal(got); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
	})

	t.Run("receive one without messages", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		transport := mocks.NewMockTransport(ctrl)
		transport.EXPECT().
			Receive(gomock.Any(), 1, 0).
			Return([]models.Message{}, nil)

		r, err := New("queue-a", transport)
		if err != nil {
			t.Fatal(err)
		}

		got, err := r.ReceiveOne(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if expected, actual := true, got == nil; expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
	})

	t.Run("transport failure surfaces unmodified", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		cause := errors.New("connection lost")

		transport := mocks.NewMockTransport(ctrl)
		transport.EXPECT().
			Receive(gomock.Any(), 5, 0).
			Return(nil, cause)

		r, err := New("queue-a", transport)
		if err != nil {
			t.Fatal(err)
		}

		_, err = r.Receive(context.Background(), 5)
		if expected, actual := cause, err; expected != actual {
			t.Errorf("expected: %v, actual: %v", expected, actual)
		}
	})
}

func TestSettlementValidation(t *testing.T) {
	t.Parallel()

	// Empty batches never invoke the transport and never emit
	// telemetry; the mock controllers verify both by expecting no
	// calls at all.
	t.Run("empty batches", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		var (
			transport = mocks.NewMockTransport(ctrl)
			sink      = telemetryMocks.NewMockSink(ctrl)
		)

		r, err := New("queue-a", transport, WithSink(sink))
		if err != nil {
			t.Fatal(err)
		}

		ctx := context.Background()
		for _, err := range []error{
			r.Complete(ctx, nil),
			r.Abandon(ctx, []uuid.UUID{}),
			r.Defer(ctx, nil),
			r.DeadLetter(ctx, nil),
		} {
			if expected, actual := true, ErrInvalidArgument(err); expected != actual {
				t.Errorf("expected: %t, actual: %t", expected, actual)
			}
		}

		if _, err := r.ReceiveBySequenceNumbers(ctx, nil); !ErrInvalidArgument(err) {
			t.Errorf("expected invalid argument, actual: %v", err)
		}
	})

	t.Run("zero renew token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		r, err := New("queue-a", mocks.NewMockTransport(ctrl))
		if err != nil {
			t.Fatal(err)
		}

		_, err = r.RenewLock(context.Background(), uuid.Empty)
		if expected, actual := true, ErrInvalidArgument(err); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
	})
}

func TestModeGuard(t *testing.T) {
	t.Parallel()

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	t.Run("lock operations in receive-and-delete mode", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		r, err := New("queue-a", mocks.NewMockTransport(ctrl),
			WithMode(models.ReceiveAndDelete),
		)
		if err != nil {
			t.Fatal(err)
		}

		var (
			ctx    = context.Background()
			tokens = []uuid.UUID{uuid.MustNew(rnd)}
		)
		for _, err := range []error{
			r.Complete(ctx, tokens),
			r.Abandon(ctx, tokens),
			r.Defer(ctx, tokens),
			r.DeadLetter(ctx, tokens),
		} {
			if expected, actual := true, ErrInvalidMode(err); expected != actual {
				t.Errorf("expected: %t, actual: %t", expected, actual)
			}
		}

		if _, err := r.RenewLock(ctx, tokens[0]); !ErrInvalidMode(err) {
			t.Errorf("expected invalid mode, actual: %v", err)
		}
		if _, err := r.ReceiveBySequenceNumbers(ctx, []int64{1}); !ErrInvalidMode(err) {
			t.Errorf("expected invalid mode, actual: %v", err)
		}
	})

	t.Run("receive allowed in receive-and-delete mode", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		transport := mocks.NewMockTransport(ctrl)
		transport.EXPECT().
			Receive(gomock.Any(), 1, 0).
			Return(nil, nil)

		r, err := New("queue-a", transport,
			WithMode(models.ReceiveAndDelete),
		)
		if err != nil {
			t.Fatal(err)
		}

		if _, err := r.Receive(context.Background(), 1); err != nil {
			t.Error(err)
		}
	})
}

func TestSettlement(t *testing.T) {
	t.Parallel()

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	t.Run("complete emits one start and one stop", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		var (
			tokens    = []uuid.UUID{uuid.MustNew(rnd)}
			transport = mocks.NewMockTransport(ctrl)
			sink      = telemetryMocks.NewMockSink(ctrl)
		)

		transport.EXPECT().
			Complete(gomock.Any(), tokens).
			Return(nil)
		sink.EXPECT().Start(gomock.Any(), gomock.Any()).Times(1)
		sink.EXPECT().Stop(gomock.Any()).Times(1)

		r, err := New("queue-a", transport, WithSink(sink))
		if err != nil {
			t.Fatal(err)
		}

		if err := r.Complete(context.Background(), tokens); err != nil {
			t.Error(err)
		}
	})

	t.Run("settlement is passed through, never cached", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		var (
			tokens    = []uuid.UUID{uuid.MustNew(rnd)}
			transport = mocks.NewMockTransport(ctrl)
		)

		// A second settlement of the same token goes to the transport
		// again; whatever the broker reports comes back.
		gomock.InOrder(
			transport.EXPECT().Complete(gomock.Any(), tokens).Return(nil),
			transport.EXPECT().Complete(gomock.Any(), tokens).Return(errors.New("lock lost")),
		)

		r, err := New("queue-a", transport)
		if err != nil {
			t.Fatal(err)
		}

		ctx := context.Background()
		if err := r.Complete(ctx, tokens); err != nil {
			t.Fatal(err)
		}

		err = r.Complete(ctx, tokens)
		if expected, actual := "lock lost", err.Error(); expected != actual {
			t.Errorf("expected: %s, actual: %s", expected, actual)
		}
	})

	t.Run("dead letter carries reason", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		var (
			tokens    = []uuid.UUID{uuid.MustNew(rnd)}
			transport = mocks.NewMockTransport(ctrl)
		)

		transport.EXPECT().
			DeadLetter(gomock.Any(), tokens, "malformed", "no payload").
			Return(nil)

		r, err := New("queue-a", transport)
		if err != nil {
			t.Fatal(err)
		}

		err = r.DeadLetterWithReason(context.Background(), tokens, "malformed", "no payload")
		if err != nil {
			t.Error(err)
		}
	})
}

func TestRenewLock(t *testing.T) {
	t.Parallel()

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	t.Run("returns the new expiry unchanged", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		var (
			token     = uuid.MustNew(rnd)
			expiry    = time.Now().Add(time.Minute).Round(time.Millisecond)
			transport = mocks.NewMockTransport(ctrl)
		)

		transport.EXPECT().
			RenewLock(gomock.Any(), token).
			Return(expiry, nil)

		r, err := New("queue-a", transport)
		if err != nil {
			t.Fatal(err)
		}

		got, err := r.RenewLock(context.Background(), token)
		if err != nil {
			t.Fatal(err)
		}
		if expected, actual := expiry, got; !expected.Equal(actual) {
			t.Errorf("expected: %v, actual: %v", expected, actual)
		}
	})

	t.Run("timeout surfaces with one exception event", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		var (
			token     = uuid.MustNew(rnd)
			transport = mocks.NewMockTransport(ctrl)
			sink      = telemetryMocks.NewMockSink(ctrl)
		)

		transport.EXPECT().
			RenewLock(gomock.Any(), token).
			Return(time.Time{}, context.DeadlineExceeded)
		sink.EXPECT().Start(gomock.Any(), gomock.Any()).Times(1)
		sink.EXPECT().Exception(gomock.Any(), context.DeadlineExceeded).Times(1)

		r, err := New("queue-a", transport, WithSink(sink))
		if err != nil {
			t.Fatal(err)
		}

		_, err = r.RenewLock(context.Background(), token)
		if expected, actual := true, ErrTimeout(err); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
	})
}

func TestExecuteManagementRequest(t *testing.T) {
	t.Parallel()

	t.Run("pass-through", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		var (
			req = mgmtRequest()
			res = mgmtResponse(200)

			transport = mocks.NewMockTransport(ctrl)
		)

		transport.EXPECT().
			ExecuteManagementRequest(gomock.Any(), req).
			Return(res, nil)

		r, err := New("queue-a", transport)
		if err != nil {
			t.Fatal(err)
		}

		got, err := r.ExecuteManagementRequest(context.Background(), req)
		if err != nil {
			t.Fatal(err)
		}
		if expected, actual := res.StatusCode, got.StatusCode; expected != actual {
			t.Errorf("expected: %d, actual: %d", expected, actual)
		}
	})
}

func TestPeek(t *testing.T) {
	t.Parallel()

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	t.Run("invalid count", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		r, err := New("queue-a", mocks.NewMockTransport(ctrl))
		if err != nil {
			t.Fatal(err)
		}

		_, err = r.Peek(context.Background(), 0, 0)
		if expected, actual := true, ErrInvalidArgument(err); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
	})

	t.Run("peek", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		var (
			msg = newTestMessage(rnd, 42)
			res = mgmtResponse(200)

			transport = mocks.NewMockTransport(ctrl)
		)
		res.Properties["messages"] = []models.Message{msg}

		transport.EXPECT().
			ExecuteManagementRequest(gomock.Any(), gomock.Any()).
			Return(res, nil)

		r, err := New("queue-a", transport)
		if err != nil {
			t.Fatal(err)
		}

		msgs, err := r.Peek(context.Background(), 42, 1)
		if err != nil {
			t.Fatal(err)
		}
		if expected, actual := 1, len(msgs); expected != actual {
			t.Fatalf("expected: %d, actual: %d", expected, actual)
		}
		if expected, actual := int64(42), msgs[0].SequenceNumber(); expected != actual {
			t.Errorf("expected: %d, actual: %d", expected, actual)
		}
	})
}
