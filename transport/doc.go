// Package transport implements the HORUS shared-memory transport layer:
// named topic regions (Registry), exclusive single-producer/single-
// consumer channels (Link), and broadcast multi-subscriber channels
// (Hub), all built on the lock-free slot layout in package ring.
//
// A region is identified by a topic name and backed by real POSIX
// shared memory on Linux (shm_linux.go) or, where that isn't available,
// process-local heap memory (shm_other.go) — same-process callers see
// identical behavior either way; only cross-process attach depends on
// the platform backing.
package transport
