package transport

import (
	"encoding/binary"
	"os"
	"sync"
	"time"
)

// entry is the registry's bookkeeping record for one topic: the backing
// shared-memory region (real POSIX shm on Linux, heap-backed elsewhere)
// plus the in-process handle constructed over it. Handle is `any` because
// the registry is not itself generic over message type T — NewLink[T] and
// NewHub[T] type-assert it back.
type entry struct {
	region     *posixRegion
	layout     Layout
	mode       Mode
	creatorPID int
	createdAt  time.Time
	refs       int
	handle     any // *linkCore[T] or *Hub[T], depending on mode
}

// Registry is the process-wide topic name → shared-memory region mapping
// described in spec §4.4 and §9 ("lazy-init on first use / explicit
// teardown at process exit", modeled as a documented singleton).
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewRegistry creates an independent registry. Most callers should use
// DefaultRegistry; a private Registry is useful in tests that must not
// share state (or shared-memory regions) with other tests.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry singleton.
func DefaultRegistry() *Registry { return defaultRegistry }

// lookupOrCreate finds the entry for name, creating it (and the backing
// region) via build if absent. build is called with the registry lock
// held, exactly once per name.
func (r *Registry) lookupOrCreate(name string, layout Layout, build func() any) (*entry, error) {
	if err := ValidateTopicName(name); err != nil {
		return nil, err
	}
	regionName := sanitizeRegionName(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[name]; ok {
		if !e.layout.Matches(layout) {
			return nil, ErrLayoutMismatch
		}
		e.refs++
		return e, nil
	}

	size := regionSize(layout, cursorCountFor(layout))
	region, err := openRegion(regionName, size, true)
	if err != nil {
		return nil, err
	}
	writeHeader(region.Bytes(), layout, FlagOverwriteOldest, cursorCountFor(layout))

	e := &entry{
		region:     region,
		layout:     layout,
		mode:       layout.Mode,
		creatorPID: os.Getpid(),
		createdAt:  time.Now(),
		refs:       1,
		handle:     build(),
	}
	r.entries[name] = e
	return e, nil
}

// attach locates an existing entry and validates the caller's expected
// layout against it. Unlike lookupOrCreate, it never creates a region:
// a topic must already exist (created by some producer or subscriber)
// before it can be attached.
func (r *Registry) attach(name string, layout Layout) (*entry, error) {
	if err := ValidateTopicName(name); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return nil, ErrLayoutMismatch
	}
	if !e.layout.Matches(layout) {
		return nil, ErrLayoutMismatch
	}
	e.refs++
	return e, nil
}

// detach releases one reference to a topic. The backing region is
// closed, but not unlinked, when the last reference is released; the
// name remains reserved until Unlink is called explicitly (spec §9:
// "never rely on process exit to unlink").
func (r *Registry) detach(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		_ = e.region.Close()
	}
}

// Unlink frees the topic name so a future create_or_open starts a new
// generation of the region. Existing handle holders keep working until
// they individually detach (spec §4.4).
func (r *Registry) Unlink(name string) error {
	r.mu.Lock()
	e, ok := r.entries[name]
	if ok {
		delete(r.entries, name)
	}
	r.mu.Unlock()

	if !ok {
		return nil
	}
	return e.region.Unlink()
}

func cursorCountFor(l Layout) uint32 {
	if l.Mode == ModeHub {
		return defaultCursorCapacity
	}
	return 1
}

func writeHeader(b []byte, l Layout, flags Flags, cursorCount uint32) {
	binary.LittleEndian.PutUint32(b[0:4], Magic)
	binary.LittleEndian.PutUint16(b[4:6], Version)
	b[6] = byte(l.Mode)
	b[7] = byte(flags)
	binary.LittleEndian.PutUint32(b[8:12], l.MessageSize)
	binary.LittleEndian.PutUint32(b[12:16], l.MessageAlign)
	binary.LittleEndian.PutUint32(b[16:20], l.Capacity)
	binary.LittleEndian.PutUint32(b[20:24], cursorCount)
	// Bytes 24..32 (producer cursor) and 32..40 (reserved) start zeroed;
	// the producer cursor is owned and advanced by the in-process
	// handle's atomic counter, not by raw reads of these header bytes.
}

func readHeader(b []byte) (Header, bool) {
	if len(b) < headerSize {
		return Header{}, false
	}
	h := Header{
		Magic:        binary.LittleEndian.Uint32(b[0:4]),
		Version:      binary.LittleEndian.Uint16(b[4:6]),
		Mode:         Mode(b[6]),
		Flags:        Flags(b[7]),
		MessageSize:  binary.LittleEndian.Uint32(b[8:12]),
		MessageAlign: binary.LittleEndian.Uint32(b[12:16]),
		Capacity:     binary.LittleEndian.Uint32(b[16:20]),
		CursorCount:  binary.LittleEndian.Uint32(b[20:24]),
	}
	return h, h.Magic == Magic && h.Version == Version
}
