// Package ring implements the HORUS ring buffer contract: a fixed-capacity,
// power-of-two, cache-line-aligned slot array whose producer and consumer
// cursors advance lock-free using atomic counters and sequence-per-slot
// publication.
//
// Buffer[T] realizes the single-producer/single-consumer contract described
// by the HORUS shared-memory ABI: try_push/push on the producer side,
// try_pop_at(cursor) on the consumer side. transport.Link builds directly on
// Buffer. transport.Hub builds a broadcast (multi-reader, non-consuming)
// engine on top of the same Slot layout, since its consumers each keep an
// independent cursor instead of sharing one.
package ring

import "code.hybscloud.com/atomix"

// Pad is cache-line padding used between hot fields to prevent false sharing.
type Pad [64]byte

// PadShort is one cache line minus the 8-byte sequence field, appended
// after a slot's payload.
type PadShort [64 - 8]byte

// Slot is one element of the ring: a sequence number publishing readiness,
// followed by the payload and PadShort. A slot is 64+sizeof(T) bytes, so
// adjacent slots' sequence numbers are at least one cache line apart; the
// slot size is not rounded up to a multiple of the cache line.
type Slot[T any] struct {
	Sequence atomix.Uint64
	Payload  T
	_        PadShort
}

// Buffer is a bounded, power-of-two RB(T, N) with one producer cursor and
// one logical consumer cursor (callers may keep that cursor anywhere —
// transport.Link keeps it inline; transport.Hub keeps one per subscriber).
//
// Slot i is free for the producer at position p when Sequence == p, and
// ready for the consumer at position p when Sequence == p+1 (Vyukov's
// bounded MPMC formulation, as described by the HORUS ring buffer contract).
type Buffer[T any] struct {
	_        Pad
	producer atomix.Uint64
	_        Pad
	slots    []Slot[T]
	capacity uint64 // N, power of two
	mask     uint64 // N - 1
}

// New creates a Buffer with the given capacity, rounded up to the next
// power of two. Panics if capacity < 2.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 2 {
		panic("ring: capacity must be >= 2")
	}
	n := uint64(RoundToPow2(capacity))
	b := &Buffer[T]{
		slots:    make([]Slot[T], n),
		capacity: n,
		mask:     n - 1,
	}
	for i := uint64(0); i < n; i++ {
		b.slots[i].Sequence.StoreRelaxed(i)
	}
	return b
}

// Cap returns the usable capacity N.
func (b *Buffer[T]) Cap() int { return int(b.capacity) }

// Mask returns N-1, exposed so callers building their own claim protocol
// (transport.Hub) can index slots consistently with Buffer's own layout.
func (b *Buffer[T]) Mask() uint64 { return b.mask }

// Slots exposes the raw slot array for callers (transport.Hub) that
// implement a broadcast protocol on top of the same physical layout.
func (b *Buffer[T]) Slots() []Slot[T] { return b.slots }

// LoadProducerPos returns the current producer cursor (acquire load).
// Used by broadcast readers to compute how far behind they have fallen,
// and by single-producer callers (Link) that advance the cursor with a
// plain store rather than an FAA.
func (b *Buffer[T]) LoadProducerPos() uint64 { return b.producer.LoadAcquire() }

// StoreProducerPos sets the producer cursor directly (release store).
// Only safe for a single-producer caller; a multi-producer caller
// (Hub) must use ClaimProducerSlot instead.
func (b *Buffer[T]) StoreProducerPos(pos uint64) { b.producer.StoreRelease(pos) }

// ClaimProducerSlot atomically advances the producer cursor by one and
// returns the previously-claimed position (fetch-and-add). Safe for
// multiple concurrent producers.
func (b *Buffer[T]) ClaimProducerSlot() uint64 { return b.producer.AddAcqRel(1) - 1 }

// WriteSlot stores value at pos and publishes it by advancing the
// slot's sequence number to pos+1, making it visible to a reader whose
// cursor equals pos. Pairs with ClaimProducerSlot for a multi-producer
// claim-then-publish sequence (Hub.Send), or can be called directly
// after a plain StoreProducerPos (a single producer that already knows
// it owns pos).
func (b *Buffer[T]) WriteSlot(pos uint64, value *T) {
	slot := &b.slots[pos&b.mask]
	slot.Payload = *value
	slot.Sequence.StoreRelease(pos + 1)
}

// ReadSlotSequence returns the sequence number currently published at
// pos's slot, without regard to which logical position last wrote it.
func (b *Buffer[T]) ReadSlotSequence(pos uint64) uint64 {
	return b.slots[pos&b.mask].Sequence.LoadAcquire()
}

// ReadSlotPayload returns the payload currently stored at pos's slot.
// Callers must first confirm via ReadSlotSequence that pos is the
// position that slot was last published at.
func (b *Buffer[T]) ReadSlotPayload(pos uint64) T {
	return b.slots[pos&b.mask].Payload
}

// TryPush is the non-overwriting producer operation for a single-producer
// caller (the caller is responsible for not calling TryPush concurrently
// from more than one goroutine — transport.Link enforces this).
// Returns ErrCapacityFull when the slot the producer would claim has not
// yet been freed by the consumer.
func (b *Buffer[T]) TryPush(value *T) error {
	pos := b.producer.LoadRelaxed()
	slot := &b.slots[pos&b.mask]
	if slot.Sequence.LoadAcquire() != pos {
		return ErrCapacityFull
	}
	slot.Payload = *value
	slot.Sequence.StoreRelease(pos + 1)
	b.producer.StoreRelease(pos + 1)
	return nil
}

// Push is the overwriting producer operation for a single-producer caller.
// It always succeeds, clobbering the oldest unread slot if the buffer is
// full, and reports whether it did so.
func (b *Buffer[T]) Push(value *T) (overwrote bool) {
	pos := b.producer.LoadRelaxed()
	slot := &b.slots[pos&b.mask]
	overwrote = slot.Sequence.LoadAcquire() != pos
	slot.Payload = *value
	slot.Sequence.StoreRelease(pos + 1)
	b.producer.StoreRelease(pos + 1)
	return overwrote
}

// TryPopAt is the exclusive (single-reader) consumer operation: it consumes
// the slot at cursor, frees it for reuse by the producer N positions later,
// and returns the advanced cursor. Returns ErrEmpty when no new data has
// been published, or a Lagged error when the producer has already
// overwritten the slot the cursor names (only possible when the producer
// side uses Push rather than TryPush) — next is resynced to the true
// oldest position still resident in the ring (producer position minus
// capacity), not to the sequence number of the one slot the stale cursor
// happened to index, since that slot's last writer is not necessarily the
// oldest surviving message once the cursor has fallen behind by more than
// one lap. Resyncing to the wrong position would both misreport how many
// messages were lost and skip over live, never-overwritten data.
func (b *Buffer[T]) TryPopAt(cursor uint64) (value T, next uint64, err error) {
	slot := &b.slots[cursor&b.mask]
	seq := slot.Sequence.LoadAcquire()
	switch {
	case seq == cursor+1:
		value = slot.Payload
		var zero T
		slot.Payload = zero
		slot.Sequence.StoreRelease(cursor + b.capacity)
		return value, cursor + 1, nil
	case seq > cursor+1:
		var oldest uint64
		if producerPos := b.producer.LoadAcquire(); producerPos > b.capacity {
			oldest = producerPos - b.capacity
		}
		return value, oldest, Lagged{N: int(oldest - cursor)}
	default:
		return value, cursor, ErrEmpty
	}
}

// RoundToPow2 rounds n up to the next power of two; n < 2 rounds to 2.
func RoundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
