package scheduler

import "time"

// DeadlineMissPolicy selects what the scheduler does when a node's
// tick exceeds its declared deadline too many times within the
// configured window.
type DeadlineMissPolicy uint8

const (
	// PolicyLog logs the miss and keeps running (default, standard
	// presets).
	PolicyLog DeadlineMissPolicy = iota
	// PolicyAbort transitions the scheduler to Stopped with a
	// DeadlineMissed error once max misses is reached.
	PolicyAbort
	// PolicyPanic is PolicyAbort plus re-panicking the triggering
	// node's recovered panic value after teardown, for hard-RT presets
	// that must never mask a node crash.
	PolicyPanic
)

// Config configures a Scheduler, built fluently (mirroring the
// teacher's Builder/Options pattern) and via named presets.
type Config struct {
	name string

	rateHz float64

	determinism  bool
	learningMode bool

	realtimePriority int // 0 = not requested
	cpuAffinity      int // -1 = not requested
	lockMemory       bool
	prefaultBytes    int

	deadlineMissPolicy DeadlineMissPolicy
	maxMisses          int
	missWindow         int

	logRingCapacity int
}

// NewConfig creates a Config for a scheduler named name, with
// reasonable general-purpose defaults (1kHz, learning mode on, log
// policy, no OS integration requested).
func NewConfig(name string) *Config {
	return &Config{
		name:               name,
		rateHz:             1000,
		learningMode:       true,
		cpuAffinity:        -1,
		deadlineMissPolicy: PolicyLog,
		maxMisses:          8,
		missWindow:         32,
		logRingCapacity:    1024,
	}
}

// Name returns the scheduler's configured name.
func (c *Config) Name() string { return c.name }

// RateHz sets the global tick rate.
func (c *Config) RateHz(hz float64) *Config {
	c.rateHz = hz
	return c
}

// TickPeriod returns the configured tick period.
func (c *Config) TickPeriod() time.Duration {
	return time.Duration(float64(time.Second) / c.rateHz)
}

// EnableDeterminism disables the learning classifier, so the node order
// fixed by the priority sort at the first Run never changes. It does not
// preallocate storage for nodes: registration still appends as usual.
func (c *Config) EnableDeterminism() *Config {
	c.determinism = true
	c.learningMode = false
	return c
}

// Deterministic reports whether determinism mode is enabled.
func (c *Config) Deterministic() bool { return c.determinism }

// LearningMode reports whether the adaptive classifier may reorder
// nodes within a priority band.
func (c *Config) LearningMode() bool { return c.learningMode }

// SetRealtimePriority requests SCHED_FIFO at the given priority during
// Attach. 0 (the default) means no request is made.
func (c *Config) SetRealtimePriority(priority int) *Config {
	c.realtimePriority = priority
	return c
}

// PinToCPU requests CPU affinity to the given core during Attach. -1
// (the default) means no request is made.
func (c *Config) PinToCPU(cpu int) *Config {
	c.cpuAffinity = cpu
	return c
}

// LockMemory requests mlockall during Attach.
func (c *Config) LockMemory() *Config {
	c.lockMemory = true
	return c
}

// PrefaultStack requests pre-faulting n bytes of stack during Attach.
func (c *Config) PrefaultStack(n int) *Config {
	c.prefaultBytes = n
	return c
}

// WithDeadlineMissPolicy sets the action taken when max misses is
// reached in the configured window.
func (c *Config) WithDeadlineMissPolicy(p DeadlineMissPolicy) *Config {
	c.deadlineMissPolicy = p
	return c
}

// WithMaxMisses sets the sliding-window miss threshold and window size
// the safety monitor checks against.
func (c *Config) WithMaxMisses(window, max int) *Config {
	c.missWindow = window
	c.maxMisses = max
	return c
}

// WithLogRingCapacity sets the per-node log ring capacity.
func (c *Config) WithLogRingCapacity(n int) *Config {
	c.logRingCapacity = n
	return c
}

// Standard is the general-purpose preset: 1kHz, learning mode on, no
// OS integration, miss policy Log.
func Standard(name string) *Config {
	return NewConfig(name)
}

// HardRealtime is the preset for control loops that must never miss a
// deadline: determinism on, SCHED_FIFO at priority 80, memory locked,
// 1MB stack prefaulted, three misses within any eight-tick window aborts.
func HardRealtime(name string) *Config {
	return NewConfig(name).
		RateHz(1000).
		EnableDeterminism().
		SetRealtimePriority(80).
		LockMemory().
		PrefaultStack(1 << 20).
		WithDeadlineMissPolicy(PolicyAbort).
		WithMaxMisses(8, 3)
}

// IndustrialRobot is tuned for a fixed-cell manipulator: deterministic,
// 500Hz, pinned to CPU 2, moderate miss tolerance, abort on repeated
// misses.
func IndustrialRobot(name string) *Config {
	return NewConfig(name).
		RateHz(500).
		EnableDeterminism().
		SetRealtimePriority(60).
		PinToCPU(2).
		LockMemory().
		WithDeadlineMissPolicy(PolicyAbort).
		WithMaxMisses(16, 5)
}

// Drone is tuned for a flight controller: high rate, hard determinism,
// aggressive RT priority, panics (rather than a graceful abort) if the
// control loop falls behind, since a silent stop while airborne is
// worse than a crash with a stack trace.
func Drone(name string) *Config {
	return NewConfig(name).
		RateHz(2000).
		EnableDeterminism().
		SetRealtimePriority(90).
		LockMemory().
		PrefaultStack(2 << 20).
		WithDeadlineMissPolicy(PolicyPanic).
		WithMaxMisses(4, 2)
}

// SurgicalRobot is tuned for the strictest safety margin: determinism,
// highest RT priority, smallest miss window, aborts (never panics,
// since an uncontrolled panic mid-procedure is unacceptable) the
// instant the safety monitor trips.
func SurgicalRobot(name string) *Config {
	return NewConfig(name).
		RateHz(1000).
		EnableDeterminism().
		SetRealtimePriority(99).
		LockMemory().
		PrefaultStack(4 << 20).
		WithDeadlineMissPolicy(PolicyAbort).
		WithMaxMisses(4, 1)
}
