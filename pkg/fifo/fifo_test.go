package fifo_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/trussle/collector/pkg/fifo"
	"github.com/trussle/collector/pkg/models"
	"github.com/trussle/collector/pkg/transport"
	"github.com/trussle/collector/pkg/uuid"
)

func TestFIFO_Add(t *testing.T) {
	t.Parallel()

	t.Run("add then get", func(t *testing.T) {
		f := fifo.NewFIFO(noEviction(t))

		msg := generateMessage(t, 1)
		f.Add(msg)

		got, ok := f.Get(msg.LockToken())
		if expected, actual := true, ok; expected != actual {
			t.Fatalf("expected: %t, actual: %t", expected, actual)
		}
		if expected, actual := true, msg.Equal(got); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
	})

	t.Run("contains", func(t *testing.T) {
		f := fifo.NewFIFO(noEviction(t))

		msg := generateMessage(t, 1)
		f.Add(msg)

		if expected, actual := true, f.Contains(msg.LockToken()); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
		if expected, actual := false, f.Contains(uuid.MustNew(rnd())); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
	})

	t.Run("keys preserve arrival order", func(t *testing.T) {
		f := fifo.NewFIFO(noEviction(t))

		first := generateMessage(t, 1)
		second := generateMessage(t, 2)
		f.Add(first)
		f.Add(second)

		keys := f.Keys()
		if expected, actual := 2, len(keys); expected != actual {
			t.Fatalf("expected: %d, actual: %d", expected, actual)
		}
		if expected, actual := true, first.LockToken().Equal(keys[0]); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
	})
}

func TestFIFO_Eviction(t *testing.T) {
	t.Parallel()

	t.Run("remove", func(t *testing.T) {
		var (
			evicted int
			reason  fifo.EvictionReason
		)
		f := fifo.NewFIFO(func(r fifo.EvictionReason, k uuid.UUID, v models.Message) {
			evicted++
			reason = r
		})

		msg := generateMessage(t, 1)
		f.Add(msg)

		if expected, actual := true, f.Remove(msg.LockToken()); expected != actual {
			t.Fatalf("expected: %t, actual: %t", expected, actual)
		}
		if expected, actual := 1, evicted; expected != actual {
			t.Errorf("expected: %d, actual: %d", expected, actual)
		}
		if expected, actual := fifo.Removed, reason; expected != actual {
			t.Errorf("expected: %d, actual: %d", expected, actual)
		}
	})

	t.Run("pop returns the oldest", func(t *testing.T) {
		var evicted int
		f := fifo.NewFIFO(func(r fifo.EvictionReason, k uuid.UUID, v models.Message) {
			evicted++
		})

		first := generateMessage(t, 1)
		f.Add(first)
		f.Add(generateMessage(t, 2))

		key, _, ok := f.Pop()
		if expected, actual := true, ok; expected != actual {
			t.Fatalf("expected: %t, actual: %t", expected, actual)
		}
		if expected, actual := true, first.LockToken().Equal(key); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
		if expected, actual := 1, f.Len(); expected != actual {
			t.Errorf("expected: %d, actual: %d", expected, actual)
		}
	})

	t.Run("purge", func(t *testing.T) {
		var evicted int
		f := fifo.NewFIFO(func(r fifo.EvictionReason, k uuid.UUID, v models.Message) {
			evicted++
		})

		f.Add(generateMessage(t, 1))
		f.Add(generateMessage(t, 2))
		f.Purge()

		if expected, actual := 2, evicted; expected != actual {
			t.Errorf("expected: %d, actual: %d", expected, actual)
		}
		if expected, actual := 0, f.Len(); expected != actual {
			t.Errorf("expected: %d, actual: %d", expected, actual)
		}
	})
}

func TestFIFO_Dequeue(t *testing.T) {
	t.Parallel()

	t.Run("dequeue drains in order", func(t *testing.T) {
		var evicted int
		f := fifo.NewFIFO(func(r fifo.EvictionReason, k uuid.UUID, v models.Message) {
			evicted++
		})

		f.Add(generateMessage(t, 1))
		f.Add(generateMessage(t, 2))

		var seen []int64
		dequeued, err := f.Dequeue(func(k uuid.UUID, v models.Message) error {
			seen = append(seen, v.SequenceNumber())
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}

		if expected, actual := 2, len(dequeued); expected != actual {
			t.Errorf("expected: %d, actual: %d", expected, actual)
		}
		if expected, actual := int64(1), seen[0]; expected != actual {
			t.Errorf("expected: %d, actual: %d", expected, actual)
		}
		if expected, actual := 0, f.Len(); expected != actual {
			t.Errorf("expected: %d, actual: %d", expected, actual)
		}
	})

	t.Run("dequeue stops on error", func(t *testing.T) {
		f := fifo.NewFIFO(noEviction(t))

		f.Add(generateMessage(t, 1))
		f.Add(generateMessage(t, 2))

		_, err := f.Dequeue(func(k uuid.UUID, v models.Message) error {
			return errBad
		})
		if expected, actual := errBad, err; expected != actual {
			t.Errorf("expected: %v, actual: %v", expected, actual)
		}
		if expected, actual := 2, f.Len(); expected != actual {
			t.Errorf("expected: %d, actual: %d", expected, actual)
		}
	})
}

func TestFIFO_Expiring(t *testing.T) {
	t.Parallel()

	t.Run("only lapsed locks", func(t *testing.T) {
		f := fifo.NewFIFO(noEviction(t))

		now := time.Now()
		stale := transport.NewMessage(1, uuid.MustNew(rnd()), now.Add(time.Second), "a", nil)
		fresh := transport.NewMessage(2, uuid.MustNew(rnd()), now.Add(time.Hour), "b", nil)
		f.Add(stale)
		f.Add(fresh)

		expiring := f.Expiring(now.Add(time.Minute))
		if expected, actual := 1, len(expiring); expected != actual {
			t.Fatalf("expected: %d, actual: %d", expected, actual)
		}
		if expected, actual := int64(1), expiring[0].Value.SequenceNumber(); expected != actual {
			t.Errorf("expected: %d, actual: %d", expected, actual)
		}
	})
}

var errBad = errors.New("bad")

func rnd() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func noEviction(t *testing.T) fifo.EvictCallback {
	return func(r fifo.EvictionReason, k uuid.UUID, v models.Message) {
		t.Fatal("failed if called")
	}
}

func generateMessage(t *testing.T, sequenceNumber int64) models.Message {
	t.Helper()

	msg, err := transport.GenerateMessage(rnd(), sequenceNumber)
	if err != nil {
		t.Fatal(err)
	}
	return msg
}
