//go:build linux

package transport

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// shmRoot is the well-known name prefix under which topic regions are
// named, per spec §4.4. POSIX shm_open names are a single flat
// /dev/shm entry, so the root is a prefix rather than a directory.
const shmRoot = "/horus."

// posixRegion backs a topic region with real POSIX shared memory,
// mmap'd so every attacher in every process observes the same bytes.
type posixRegion struct {
	name string
	fd   int
	data []byte
}

func openRegion(name string, size uint64, create bool) (*posixRegion, error) {
	shmName := shmRoot + sanitizeRegionName(name)

	oflag := unix.O_RDWR
	if create {
		oflag |= unix.O_CREAT
	}
	fd, err := unix.ShmOpen(shmName, oflag, 0o600)
	if err != nil {
		return nil, fmt.Errorf("transport: shm_open %s: %w", shmName, err)
	}

	if create {
		if err := unix.Ftruncate(fd, int64(size)); err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("transport: ftruncate %s: %w", shmName, err)
		}
	}

	data, err := unix.Mmap(fd, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("transport: mmap %s: %w", shmName, err)
	}

	return &posixRegion{name: shmName, fd: fd, data: data}, nil
}

func (r *posixRegion) Bytes() []byte { return r.data }

func (r *posixRegion) Close() error {
	if err := unix.Munmap(r.data); err != nil {
		return err
	}
	return unix.Close(r.fd)
}

func (r *posixRegion) Unlink() error {
	return unix.ShmUnlink(r.name)
}
