//go:build linux

package rt

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// SetRealtimePriority switches the calling thread to SCHED_FIFO at the
// given priority (1-99; higher preempts lower).
func SetRealtimePriority(priority int) error {
	param := &unix.SchedParam{Priority: int32(priority)}
	if err := unix.SchedSetscheduler(0, unix.SCHED_FIFO, param); err != nil {
		return fmt.Errorf("rt: sched_setscheduler SCHED_FIFO priority %d: %w", priority, err)
	}
	return nil
}

// PinToCPU restricts the calling thread's CPU affinity to a single
// core.
func PinToCPU(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("rt: sched_setaffinity cpu %d: %w", cpu, err)
	}
	return nil
}

// LockMemory calls mlockall(MCL_CURRENT|MCL_FUTURE), preventing the
// process's memory from ever being paged out — a page fault inside a
// control loop is itself a deadline miss waiting to happen.
func LockMemory() error {
	if err := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE); err != nil {
		return fmt.Errorf("rt: mlockall: %w", err)
	}
	return nil
}

// PrefaultStack touches n bytes so the pages backing them are resident
// before the hot path runs. Go goroutine stacks grow on demand and
// aren't directly prefaultable the way a pthread stack is; this
// approximates the same goal by faulting in a heap buffer of the
// requested size up front, which is what PrefaultStack's callers
// actually care about (no page fault during a real-time tick).
func PrefaultStack(n int) error {
	if n <= 0 {
		return nil
	}
	buf := make([]byte, n)
	const pageSize = 4096
	for i := 0; i < len(buf); i += pageSize {
		buf[i] = 1
	}
	return nil
}
