package ring

import (
	"errors"
	"fmt"
)

// ErrCapacityFull is returned by a non-overwriting producer operation when
// the slot it would claim has not yet been freed by the consumer.
var ErrCapacityFull = errors.New("ring: capacity full")

// ErrEmpty is returned by a consumer operation when no new data has been
// published since the cursor's position.
var ErrEmpty = errors.New("ring: empty")

// Lagged reports that a consumer's cursor fell more than capacity-1 behind
// the producer; N is the number of messages known to have been overwritten
// before the slot the cursor names.
type Lagged struct {
	N int
}

func (l Lagged) Error() string {
	return fmt.Sprintf("ring: consumer lagged, %d messages overwritten", l.N)
}

// IsLagged reports whether err is a Lagged condition and returns it.
func IsLagged(err error) (Lagged, bool) {
	var l Lagged
	if errors.As(err, &l) {
		return l, true
	}
	return Lagged{}, false
}
