//go:build !linux

package transport

import (
	"fmt"
	"sync"
)

// processLocalRegions backs topic regions with plain heap memory when
// POSIX shared memory isn't available on the build target. Cross-process
// attach does not work in this mode; same-process attach (e.g. in tests)
// does, which is all this fallback promises.
var processLocalRegions = struct {
	mu      sync.Mutex
	regions map[string][]byte
}{regions: make(map[string][]byte)}

type posixRegion struct {
	name string
	data []byte
}

func openRegion(name string, size uint64, create bool) (*posixRegion, error) {
	processLocalRegions.mu.Lock()
	defer processLocalRegions.mu.Unlock()

	data, ok := processLocalRegions.regions[name]
	if !ok {
		if !create {
			return nil, fmt.Errorf("transport: region %q does not exist", name)
		}
		data = make([]byte, size)
		processLocalRegions.regions[name] = data
	}
	return &posixRegion{name: name, data: data}, nil
}

func (r *posixRegion) Bytes() []byte { return r.data }

func (r *posixRegion) Close() error { return nil }

func (r *posixRegion) Unlink() error {
	processLocalRegions.mu.Lock()
	defer processLocalRegions.mu.Unlock()
	delete(processLocalRegions.regions, r.name)
	return nil
}
