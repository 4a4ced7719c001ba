package ring_test

import (
	"errors"
	"testing"

	"github.com/horus-robotics/horus-sub003/ring"
)

func TestBufferCapacityRoundsToPow2(t *testing.T) {
	b := ring.New[int](3)
	if b.Cap() != 4 {
		t.Fatalf("Cap: got %d, want 4", b.Cap())
	}
}

func TestBufferTryPushTryPopAtFIFO(t *testing.T) {
	b := ring.New[int](4)

	for i := range 4 {
		v := i + 100
		if err := b.TryPush(&v); err != nil {
			t.Fatalf("TryPush(%d): %v", i, err)
		}
	}

	v := 999
	if err := b.TryPush(&v); !errors.Is(err, ring.ErrCapacityFull) {
		t.Fatalf("TryPush on full: got %v, want ErrCapacityFull", err)
	}

	cursor := uint64(0)
	for i := range 4 {
		val, next, err := b.TryPopAt(cursor)
		if err != nil {
			t.Fatalf("TryPopAt(%d): %v", i, err)
		}
		if val != i+100 {
			t.Fatalf("TryPopAt(%d): got %d, want %d", i, val, i+100)
		}
		cursor = next
	}

	if _, _, err := b.TryPopAt(cursor); !errors.Is(err, ring.ErrEmpty) {
		t.Fatalf("TryPopAt on empty: got %v, want ErrEmpty", err)
	}
}

func TestBufferPushOverwritesOldest(t *testing.T) {
	b := ring.New[int](8)

	for i := range 16 {
		v := i
		b.Push(&v)
	}

	cursor := uint64(0)
	_, next, err := b.TryPopAt(cursor)
	lagged, ok := ring.IsLagged(err)
	if !ok {
		t.Fatalf("TryPopAt after overwrite: got %v, want Lagged", err)
	}
	if lagged.N != 8 {
		t.Fatalf("Lagged.N: got %d, want 8", lagged.N)
	}

	val, _, err := b.TryPopAt(next)
	if err != nil {
		t.Fatalf("TryPopAt after resync: %v", err)
	}
	if val != 8 {
		t.Fatalf("TryPopAt after resync: got %d, want 8 (oldest surviving)", val)
	}
}

// TestBufferPushOverwritesOldestPartialLap covers a lag that is not an
// exact multiple of capacity: capacity 4, 9 pushes (values 0..8) means
// values 0..4 were overwritten and 5..8 are still resident (the oldest
// surviving value is 9-4=5), so resyncing must
// land on the true oldest surviving position (5), not on the sequence
// number of whatever slot cursor 0 happens to index (slot 0 was last
// written at position 8, which would wrongly resync past 5, 6, and 7
// even though they are still live).
func TestBufferPushOverwritesOldestPartialLap(t *testing.T) {
	b := ring.New[int](4)

	for i := range 9 {
		v := i
		b.Push(&v)
	}

	cursor := uint64(0)
	_, next, err := b.TryPopAt(cursor)
	lagged, ok := ring.IsLagged(err)
	if !ok {
		t.Fatalf("TryPopAt after overwrite: got %v, want Lagged", err)
	}
	if lagged.N != 5 {
		t.Fatalf("Lagged.N: got %d, want 5", lagged.N)
	}

	for i, want := range []int{5, 6, 7, 8} {
		val, n, err := b.TryPopAt(next)
		if err != nil {
			t.Fatalf("TryPopAt(%d) after resync: %v", i, err)
		}
		if val != want {
			t.Fatalf("TryPopAt(%d) after resync: got %d, want %d", i, val, want)
		}
		next = n
	}
}

func TestBufferPushReportsOverwrite(t *testing.T) {
	b := ring.New[int](2)
	for i := range 2 {
		v := i
		if overwrote := b.Push(&v); overwrote {
			t.Fatalf("Push(%d): unexpected overwrite on first lap", i)
		}
	}
	v := 42
	if overwrote := b.Push(&v); !overwrote {
		t.Fatalf("Push: expected overwrite once capacity is exceeded")
	}
}
