// Package scheduler implements the HORUS deterministic priority-based
// scheduler (spec §4.6): a cooperative, single-threaded-per-scheduler
// executor that runs a fixed set of nodes in a reproducible order each
// cycle, with optional real-time OS integration and a deadline-miss
// safety monitor.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"code.hybscloud.com/atomix"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/horus-robotics/horus-sub003/node"
	"github.com/horus-robotics/horus-sub003/observability"
	"github.com/horus-robotics/horus-sub003/rt"
)

type state uint32

const (
	stateConstructed state = iota
	stateAttached
	stateRunning
	stateStopped
)

// registration is one node's bookkeeping record: its Ticker, its
// observation record, the order it was registered in (the tie-break
// for equal priorities), and its own deadline-miss window.
type registration struct {
	name     string
	ticker   node.Ticker
	info     *node.Info
	priority int
	order    int
	deadline time.Duration
	misses   *missWindow
}

// Option configures ambient concerns (logging, metrics) a Scheduler
// needs beyond what Config captures — scheduling policy lives in
// Config, infrastructure wiring lives here.
type Option func(*Scheduler)

// WithLogger attaches a structured logger. Defaults to zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scheduler) { s.log = logger }
}

// WithMetricsRegisterer registers the scheduler's Prometheus
// collectors against reg instead of a private prometheus.NewRegistry().
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(s *Scheduler) { s.metricsReg = reg }
}

// Scheduler owns a fixed set of nodes, orders them by priority, and
// drives a cooperative tick loop at a configured rate.
type Scheduler struct {
	cfg *Config
	log *zap.Logger

	metricsReg prometheus.Registerer
	metrics    *observability.Metrics

	mu    sync.Mutex
	state state
	regs  []*registration

	cancel   atomix.Bool
	lastTick time.Time
}

// New creates a Scheduler from cfg. Call Attach, then Register each
// node, then Run.
func New(cfg *Config, opts ...Option) *Scheduler {
	s := &Scheduler{
		cfg:        cfg,
		log:        zap.NewNop(),
		metricsReg: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.metrics = observability.NewMetrics(s.metricsReg, cfg.name)
	s.log = s.log.With(zap.String("scheduler", cfg.name), zap.Int("pid", os.Getpid()))
	return s
}

// Attach performs the optional real-time OS integration calls Config
// requested, in order: SetRealtimePriority, PinToCPU, LockMemory,
// PrefaultStack. Each failure is collected and returned (wrapped as
// OsIntegrationError) but does not prevent Attach from succeeding —
// the scheduler still runs, at best effort, on a partial or total
// integration failure.
func (s *Scheduler) Attach() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateConstructed {
		return ErrAlreadyAttached
	}

	var errs []error
	if s.cfg.realtimePriority != 0 {
		if err := rt.SetRealtimePriority(s.cfg.realtimePriority); err != nil {
			errs = append(errs, &OsIntegrationError{Call: "set_realtime_priority", Err: err})
		}
	}
	if s.cfg.cpuAffinity >= 0 {
		if err := rt.PinToCPU(s.cfg.cpuAffinity); err != nil {
			errs = append(errs, &OsIntegrationError{Call: "pin_to_cpu", Err: err})
		}
	}
	if s.cfg.lockMemory {
		if err := rt.LockMemory(); err != nil {
			errs = append(errs, &OsIntegrationError{Call: "lock_memory", Err: err})
		}
	}
	if s.cfg.prefaultBytes > 0 {
		if err := rt.PrefaultStack(s.cfg.prefaultBytes); err != nil {
			errs = append(errs, &OsIntegrationError{Call: "prefault_stack", Err: err})
		}
	}

	s.state = stateAttached
	for _, e := range errs {
		s.log.Warn("OS integration call failed, continuing at best effort", zap.Error(e))
	}
	return errors.Join(errs...)
}

// Register adds a node to the schedule. priority orders nodes (lower
// runs earlier); ties preserve registration order. deadline is the
// per-node tick budget used by the safety monitor (zero means "use the
// scheduler's tick period"). loggingEnabled selects whether the node
// gets a real log ring or a discard sink.
//
// Register must be called after Attach and before the first Run.
func (s *Scheduler) Register(name string, ticker node.Ticker, priority int, deadline time.Duration, loggingEnabled bool) (*node.Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == stateRunning || s.state == stateStopped {
		return nil, ErrStopped
	}

	id := uint32(len(s.regs) + 1)
	var info *node.Info
	if loggingEnabled {
		ring, err := observability.New(fmt.Sprintf("log/%s/%s", s.cfg.name, name), s.cfg.logRingCapacity)
		if err != nil {
			return nil, err
		}
		info = node.New(name, id, ring)
	} else {
		info = node.NewDiscard(name, id)
	}
	if deadline <= 0 {
		deadline = s.cfg.TickPeriod()
	}

	s.regs = append(s.regs, &registration{
		name:     name,
		ticker:   ticker,
		info:     info,
		priority: priority,
		order:    len(s.regs),
		deadline: deadline,
		misses:   newMissWindow(s.cfg.missWindow),
	})
	return info, nil
}

// Stop asks the run loop to wind down: the current tick runs to
// completion, then every node's Shutdown is called in reverse
// registration order and Run returns nil.
func (s *Scheduler) Stop() {
	s.cancel.StoreRelease(true)
}

// Run sorts nodes by priority (stable), initializes them, and drives
// the tick loop until ctx is canceled, Stop is called, or the deadline-
// miss safety monitor trips.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.state != stateAttached {
		s.mu.Unlock()
		if s.state == stateRunning {
			return ErrAlreadyRunning
		}
		return ErrNotAttached
	}
	sort.SliceStable(s.regs, func(i, j int) bool {
		return s.regs[i].priority < s.regs[j].priority
	})
	regs := s.regs
	s.state = stateRunning
	s.mu.Unlock()

	initialized, err := s.initAll(regs)
	if err != nil {
		s.shutdownAll(initialized)
		s.setState(stateStopped)
		return err
	}

	s.lastTick = time.Now()
	tickErr := s.loop(ctx, regs)
	s.shutdownAll(regs)
	s.setState(stateStopped)

	if tickErr != nil && s.cfg.deadlineMissPolicy == PolicyPanic {
		var tp *TickPanic
		if errors.As(tickErr, &tp) {
			panic(tp.Recover)
		}
		panic(tickErr)
	}
	return tickErr
}

func (s *Scheduler) setState(st state) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Scheduler) initAll(regs []*registration) ([]*registration, error) {
	var done []*registration
	for _, r := range regs {
		if initer, ok := r.ticker.(node.Initializer); ok {
			if err := initer.Init(r.info); err != nil {
				s.log.Error("node failed to initialize", zap.String("node", r.name), zap.Error(err))
				return done, &NodeInitFailed{Node: r.name, Err: err}
			}
		}
		done = append(done, r)
	}
	return done, nil
}

func (s *Scheduler) shutdownAll(regs []*registration) {
	ordered := append([]*registration(nil), regs...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].order < ordered[j].order })
	for i := len(ordered) - 1; i >= 0; i-- {
		r := ordered[i]
		if shutdowner, ok := r.ticker.(node.Shutdowner); ok {
			if err := shutdowner.Shutdown(r.info); err != nil {
				s.log.Error("node failed to shut down", zap.String("node", r.name), zap.Error(err))
			}
		}
	}
}

// loop drives the cooperative tick loop. Reordering within a priority
// band (learning mode) happens every reorderPeriod ticks and never
// crosses a priority boundary, per spec §9's resolved open question.
const reorderPeriod = 64

func (s *Scheduler) loop(ctx context.Context, regs []*registration) error {
	period := s.cfg.TickPeriod()
	tickCount := 0
	for {
		if s.cancel.LoadAcquire() {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		next := s.lastTick.Add(period)
		if d := time.Until(next); d > 0 {
			timer := time.NewTimer(d)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return nil
			}
		}
		s.lastTick = next

		if s.cfg.learningMode && tickCount > 0 && tickCount%reorderPeriod == 0 {
			reorderWithinBands(regs)
		}

		for _, r := range regs {
			if err := s.tickOne(r, next.Add(period)); err != nil {
				return err
			}
		}
		tickCount++
	}
}

func (s *Scheduler) tickOne(r *registration, expectedDeadline time.Time) (tickErr error) {
	r.info.ExpectedDeadline = expectedDeadline

	start := time.Now()
	var panicked any
	func() {
		defer func() {
			if p := recover(); p != nil {
				panicked = p
			}
		}()
		if err := r.ticker.Tick(r.info); err != nil {
			s.log.Warn("node tick returned error", zap.String("node", r.name), zap.Error(err))
		}
	}()
	duration := time.Since(start)
	r.info.RecordTick(duration)
	s.metrics.Ticks.WithLabelValues(r.name).Inc()
	s.metrics.TickDuration.WithLabelValues(r.name).Observe(duration.Seconds())

	if panicked != nil {
		r.info.Faults.AddAcqRel(1)
		s.log.Error("node tick panicked", zap.String("node", r.name), zap.Any("recover", panicked))
		if s.cfg.deadlineMissPolicy == PolicyPanic {
			return &TickPanic{Node: r.name, Recover: panicked}
		}
	}

	missed := duration > r.deadline || panicked != nil
	if missed {
		r.info.DeadlineMisses.AddAcqRel(1)
		s.metrics.DeadlineMisses.WithLabelValues(r.name).Inc()
	}
	misses := r.misses.record(missed)
	if misses >= s.cfg.maxMisses {
		switch s.cfg.deadlineMissPolicy {
		case PolicyAbort, PolicyPanic:
			return &DeadlineMissed{Node: r.name, Misses: misses, Window: s.cfg.missWindow, MaxMiss: s.cfg.maxMisses}
		default:
			s.log.Warn("node exceeded deadline-miss threshold", zap.String("node", r.name), zap.Int("misses", misses))
		}
	}
	return nil
}

// reorderWithinBands stable-sorts consecutive runs of equal priority by
// ascending rolling mean tick duration, never moving a node across a
// priority boundary.
func reorderWithinBands(regs []*registration) {
	i := 0
	for i < len(regs) {
		j := i + 1
		for j < len(regs) && regs[j].priority == regs[i].priority {
			j++
		}
		band := regs[i:j]
		sort.SliceStable(band, func(a, b int) bool {
			return band[a].info.MeanDuration() < band[b].info.MeanDuration()
		})
		i = j
	}
}
