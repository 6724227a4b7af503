// Package replay provides a used-token guard for one-time credentials.
//
// Signed workflow tokens are stateless and cannot be revoked, so a captured
// password-reset link would otherwise stay usable for its whole lifetime
// even after the password has been changed. The guard closes that gap:
// consuming a token's ID succeeds exactly once and is remembered for the
// token's remaining lifetime, after which the record is irrelevant anyway
// because the signature has expired.
package replay

import (
	"context"
	"errors"
	"time"
)

// ErrAlreadyUsed is returned when a token ID has been consumed before.
var ErrAlreadyUsed = errors.New("replay: token already used")

// Guard records identifiers of consumed one-time tokens.
type Guard interface {
	// Consume records id as used for the given ttl. The first call for an
	// id succeeds; subsequent calls before the ttl elapses fail with
	// ErrAlreadyUsed.
	Consume(ctx context.Context, id string, ttl time.Duration) error

	// Release forgets a consumed id, making it consumable again. Callers
	// use it to un-burn a token when the operation it guarded failed after
	// the consume.
	Release(ctx context.Context, id string) error
}

// clock is overridable for tests.
type clock func() time.Time
