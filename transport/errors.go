package transport

import (
	"errors"

	"code.hybscloud.com/iox"

	"github.com/horus-robotics/horus-sub003/ring"
)

// ErrCapacityFull is returned by a non-overwriting producer when the
// buffer has no free slot. It aliases iox.ErrWouldBlock for ecosystem
// consistency, the same reasoning the transport's queue primitives use
// for their own would-block signal.
var ErrCapacityFull = iox.ErrWouldBlock

// ErrEmpty is returned by a consumer when no new data is available.
var ErrEmpty = errors.New("transport: empty")

// ErrLayoutMismatch is returned by NewLink/NewHub when the named region's
// declared layout (message size, mode) does not match what the caller
// expects.
var ErrLayoutMismatch = errors.New("transport: layout mismatch")

// ErrRoleTaken is returned when a second producer (or consumer) attempts
// to attach to a Link, which enforces exactly one of each role.
var ErrRoleTaken = errors.New("transport: role already attached")

// ErrSubscriberLimitReached is returned by Hub.Subscribe when the
// cursor table has no free slot.
var ErrSubscriberLimitReached = errors.New("transport: subscriber limit reached")

// ErrUnsupportedScheme is returned by ParseEndpoint for any scheme other
// than the shared-memory endpoint this core implements.
var ErrUnsupportedScheme = errors.New("transport: unsupported endpoint scheme")

// ErrInvalidTopicName is returned when a topic name violates the
// restricted charset or length limit from spec §6.
var ErrInvalidTopicName = errors.New("transport: invalid topic name")

// Lagged reports that a consumer's cursor fell behind the producer by
// more than capacity-1 positions; N messages were overwritten before the
// slot the cursor names. Re-exported from package ring so callers never
// need to import it directly.
type Lagged = ring.Lagged

// IsLagged reports whether err is a Lagged condition.
func IsLagged(err error) (Lagged, bool) { return ring.IsLagged(err) }

// IsWouldBlock reports whether err indicates a non-overwriting producer
// found the buffer full.
func IsWouldBlock(err error) bool { return iox.IsWouldBlock(err) }
