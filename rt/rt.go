// Package rt implements the real-time OS integration calls a
// HardRealtime-class scheduler makes during Attach: SCHED_FIFO
// priority, CPU affinity, locking memory, and pre-faulting the stack.
// On Linux these are real syscalls via golang.org/x/sys/unix
// (rt_linux.go); everywhere else they return ErrUnsupported
// (rt_other.go) — never silently ignored, per spec §7's
// OsIntegrationFailed semantics.
package rt

import "errors"

// ErrUnsupported is returned by every function in this package on a
// platform without the corresponding OS facility.
var ErrUnsupported = errors.New("rt: unsupported on this platform")
