//go:build !linux

package rt

// SetRealtimePriority always fails on non-Linux builds: there is no
// portable SCHED_FIFO equivalent this package is willing to fake.
func SetRealtimePriority(priority int) error { return ErrUnsupported }

// PinToCPU always fails on non-Linux builds.
func PinToCPU(cpu int) error { return ErrUnsupported }

// LockMemory always fails on non-Linux builds.
func LockMemory() error { return ErrUnsupported }

// PrefaultStack always fails on non-Linux builds.
func PrefaultStack(n int) error { return ErrUnsupported }
