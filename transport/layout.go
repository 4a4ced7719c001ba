package transport

// Header layout constants. This IS the cross-language ABI: bit-exact,
// little-endian, cache-line aligned (64 bytes). See spec §6.
const (
	// Magic identifies a HORUS shared-memory region: 'H','O','R','S'.
	Magic uint32 = 0x484F5253

	// Version is the layout version encoded in the header.
	Version uint16 = 1

	// headerSize is the fixed portion of the header before the
	// consumer-cursor table (offsets 0..40 in spec §6).
	headerSize = 40

	// cacheLine is the alignment unit for the whole region and for each
	// slot stride, avoiding false sharing between adjacent slots.
	cacheLine = 64
)

// Mode tags the role discipline enforced on a region.
type Mode uint8

const (
	// ModeLink is a single-producer single-consumer region.
	ModeLink Mode = 0
	// ModeHub is a multi-producer multi-consumer (broadcast) region.
	ModeHub Mode = 1
	// ModeLogRing is the fixed-record observability log ring.
	ModeLogRing Mode = 2
)

func (m Mode) String() string {
	switch m {
	case ModeLink:
		return "link"
	case ModeHub:
		return "hub"
	case ModeLogRing:
		return "logring"
	default:
		return "unknown"
	}
}

// Flags is the header's flag byte. Bit 0 selects the overflow policy.
type Flags uint8

const (
	// FlagOverwriteOldest marks a region configured to overwrite the
	// oldest unread slot rather than reject new writes when full.
	FlagOverwriteOldest Flags = 1 << 0
)

// Header mirrors the bit-exact shared-memory region header from spec §6.
// Offsets (bytes): magic=0, version=4, mode=6, flags=7, messageSize=8,
// messageAlign=12, capacity=16, cursorCount=20, producerCursor=24,
// reserved=32, consumerCursors[cursorCount] starting at 40.
type Header struct {
	Magic          uint32
	Version        uint16
	Mode           Mode
	Flags          Flags
	MessageSize    uint32
	MessageAlign   uint32
	Capacity       uint32
	CursorCount    uint32
	ProducerCursor uint64
	Reserved       uint64
}

// Layout is the declared shape of a region, compared on attach per
// the layout-portability contract (spec §4.4, §7 LayoutMismatch).
type Layout struct {
	MessageSize  uint32
	MessageAlign uint32
	Capacity     uint32
	Mode         Mode
}

// Matches reports whether two layouts are attach-compatible: same
// message size, same mode. Capacity and alignment differences are not
// treated as a mismatch by themselves — only size and mode identify the
// type T a binding expects (a differently-aligned-but-same-size T would
// be a binding bug outside what this layer can detect).
func (l Layout) Matches(other Layout) bool {
	return l.MessageSize == other.MessageSize && l.Mode == other.Mode
}

// slotStride returns the cache-line-padded size of one slot for a
// message of size messageSize: 8 bytes of sequence number followed by
// the payload, rounded up to a cache line.
func slotStride(messageSize uint32) uint32 {
	raw := 8 + messageSize
	return alignUp(raw, cacheLine)
}

func alignUp(n, align uint32) uint32 {
	if align == 0 {
		return n
	}
	rem := n % align
	if rem == 0 {
		return n
	}
	return n + (align - rem)
}

// regionSize computes the total byte size of a region for the given
// layout and cursor table size K.
func regionSize(l Layout, cursorCount uint32) uint64 {
	base := uint64(headerSize) + uint64(cursorCount)*8
	base = uint64(alignUp(uint32(base), cacheLine))
	return base + uint64(l.Capacity)*uint64(slotStride(l.MessageSize))
}
