package receiver

import (
	"github.com/pkg/errors"

	"github.com/trussle/collector/pkg/models"
	"github.com/trussle/collector/pkg/uuid"
)

// ValidateLockTokens checks the shape of a lock token batch before any
// network operation is attempted. It returns the batch size so callers
// can hand it to telemetry. Uniqueness is not enforced here, duplicate
// tokens are the broker's concern.
func ValidateLockTokens(tokens []uuid.UUID) (int, error) {
	if len(tokens) == 0 {
		return 0, NewInvalidArgument("lock token collection must be non-null and non-empty")
	}
	return len(tokens), nil
}

// ValidateSequenceNumbers checks the shape of a sequence number batch
// before any network operation is attempted, returning the batch size.
func ValidateSequenceNumbers(numbers []int64) (int, error) {
	if len(numbers) == 0 {
		return 0, NewInvalidArgument("sequence number collection must be non-null and non-empty")
	}
	return len(numbers), nil
}

// RequirePeekLock passes silently when the mode allows lock-requiring
// operations, and fails otherwise. Every settlement and lock-renewal
// operation calls this before doing any work.
func RequirePeekLock(mode models.ReceiveMode) error {
	if mode != models.PeekLock {
		return errInvalidMode{
			err: errors.New("operation requires explicit-acknowledgment mode"),
		}
	}
	return nil
}
