package receiver

import (
	"math/rand"
	"testing"
	"testing/quick"
	"time"

	"github.com/pkg/errors"

	"github.com/trussle/collector/pkg/models"
	"github.com/trussle/collector/pkg/uuid"
)

func TestValidateLockTokens(t *testing.T) {
	t.Parallel()

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	t.Run("nil", func(t *testing.T) {
		_, err := ValidateLockTokens(nil)
		if expected, actual := true, ErrInvalidArgument(err); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ValidateLockTokens([]uuid.UUID{})
		if expected, actual := true, ErrInvalidArgument(err); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
	})

	t.Run("count", func(t *testing.T) {
		fn := func(amount uint8) bool {
			if amount == 0 {
				return true
			}

			tokens := make([]uuid.UUID, amount)
			for k := range tokens {
				tokens[k] = uuid.MustNew(rnd)
			}

			count, err := ValidateLockTokens(tokens)
			if err != nil {
				t.Fatal(err)
			}
			return count == int(amount)
		}
		if err := quick.Check(fn, nil); err != nil {
			t.Error(err)
		}
	})
}

func TestValidateSequenceNumbers(t *testing.T) {
	t.Parallel()

	t.Run("nil", func(t *testing.T) {
		_, err := ValidateSequenceNumbers(nil)
		if expected, actual := true, ErrInvalidArgument(err); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
	})

	t.Run("count", func(t *testing.T) {
		fn := func(numbers []int64) bool {
			count, err := ValidateSequenceNumbers(numbers)
			if len(numbers) == 0 {
				return ErrInvalidArgument(err)
			}
			if err != nil {
				t.Fatal(err)
			}
			return count == len(numbers)
		}
		if err := quick.Check(fn, nil); err != nil {
			t.Error(err)
		}
	})
}

func TestRequirePeekLock(t *testing.T) {
	t.Parallel()

	t.Run("peek lock", func(t *testing.T) {
		if err := RequirePeekLock(models.PeekLock); err != nil {
			t.Error(err)
		}
	})

	t.Run("receive and delete", func(t *testing.T) {
		err := RequirePeekLock(models.ReceiveAndDelete)
		if expected, actual := true, ErrInvalidMode(err); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
	})
}

func TestErrorKinds(t *testing.T) {
	t.Parallel()

	t.Run("invalid argument", func(t *testing.T) {
		fn := func(source string) bool {
			err := errInvalidArgument{errors.New(source)}

			if expected, actual := source, err.Error(); expected != actual {
				t.Errorf("expected: %q, actual: %q", expected, actual)
			}
			return ErrInvalidArgument(err)
		}
		if err := quick.Check(fn, nil); err != nil {
			t.Error(err)
		}
	})

	t.Run("invalid mode", func(t *testing.T) {
		fn := func(source string) bool {
			err := errInvalidMode{errors.New(source)}

			if expected, actual := source, err.Error(); expected != actual {
				t.Errorf("expected: %q, actual: %q", expected, actual)
			}
			return ErrInvalidMode(err)
		}
		if err := quick.Check(fn, nil); err != nil {
			t.Error(err)
		}
	})

	t.Run("not supported", func(t *testing.T) {
		err := NewNotSupported("nope")
		if expected, actual := true, ErrNotSupported(err); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
	})

	t.Run("kinds do not cross", func(t *testing.T) {
		err := NewInvalidArgument("bad")

		if expected, actual := false, ErrInvalidMode(err); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
		if expected, actual := false, ErrNotSupported(err); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
		if expected, actual := false, ErrTimeout(err); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		if expected, actual := true, ErrTimeout(errors.Wrap(timeoutErr{}, "wrapped")); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
		if expected, actual := false, ErrTimeout(nil); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
	})
}

type timeoutErr struct{}

func (timeoutErr) Error() string { return "timeout" }
func (timeoutErr) Timeout() bool { return true }
