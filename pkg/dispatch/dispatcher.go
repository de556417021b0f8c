package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/powersuspend/powersuspend-go/pkg/log"
	"github.com/powersuspend/powersuspend-go/pkg/powerstate"
	"github.com/powersuspend/powersuspend-go/pkg/subscription"
	"github.com/powersuspend/powersuspend-go/pkg/triggercontext"
)

// Dispatcher errors.
var (
	ErrAlreadyStarted = errors.New("dispatcher already started")
	ErrNotRunning     = errors.New("dispatcher not running")
)

// DefaultSlowHandlerThreshold is the callback duration above which a
// warning is logged.
const DefaultSlowHandlerThreshold = time.Second

// Config configures a Dispatcher.
type Config struct {
	// Logger receives operational logs. Nil disables logging.
	Logger *slog.Logger

	// Journal receives dispatch and error events. Nil disables the journal.
	Journal log.Logger

	// InstanceID is recorded in journal events.
	InstanceID string

	// SlowHandlerThreshold is the callback duration above which a warning is
	// logged. Zero disables the check.
	SlowHandlerThreshold time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		SlowHandlerThreshold: DefaultSlowHandlerThreshold,
	}
}

// Job is one requested notification pass.
type Job struct {
	// State is the new state: Active for a suspend pass, Inactive for a
	// resume pass.
	State powerstate.State

	// Generation orders jobs across directions. Higher is newer.
	Generation uint64

	// Trigger is the source of the transition.
	Trigger powerstate.Trigger
}

// Stats holds dispatcher counters.
type Stats struct {
	Passes    uint64
	Failures  uint64
	Coalesced uint64
}

type lifecycle uint8

const (
	lifecycleIdle lifecycle = iota
	lifecycleRunning
	lifecycleStopping
	lifecycleStopped
)

// lane is the per-direction queue: one pending slot plus a running flag.
type lane struct {
	pending   *Job
	coalesced int
	running   bool
}

// Dispatcher runs notification passes over a subscription.Registry.
type Dispatcher struct {
	registry *subscription.Registry
	config   Config
	logger   *slog.Logger
	journal  log.Logger

	mu      sync.Mutex
	state   lifecycle
	lanes   [2]lane // indexed by powerstate.State
	changed chan struct{}
	ctx     context.Context

	wg sync.WaitGroup

	passes    atomic.Uint64
	failures  atomic.Uint64
	coalesced atomic.Uint64
}

// New creates a Dispatcher for the registry. Call Start before Enqueue.
func New(registry *subscription.Registry, config Config) *Dispatcher {
	journal := config.Journal
	if journal == nil {
		journal = log.NoopLogger{}
	}
	return &Dispatcher{
		registry: registry,
		config:   config,
		logger:   config.Logger,
		journal:  journal,
		changed:  make(chan struct{}),
	}
}

// Start launches the suspend and resume workers. ctx is the parent of the
// context handed to callbacks; the workers themselves exit only on Stop.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != lifecycleIdle {
		return ErrAlreadyStarted
	}
	if ctx == nil {
		ctx = context.Background()
	}
	d.ctx = ctx
	d.state = lifecycleRunning

	d.wg.Add(2)
	go d.worker(powerstate.Active)
	go d.worker(powerstate.Inactive)

	d.debugLog("dispatcher started")
	return nil
}

// Stop waits for pending and running passes to finish, then stops the
// workers. It is safe to call Stop more than once.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.state != lifecycleRunning {
		d.mu.Unlock()
		return
	}
	d.state = lifecycleStopping
	d.notifyLocked()
	d.mu.Unlock()

	d.wg.Wait()

	d.mu.Lock()
	d.state = lifecycleStopped
	d.mu.Unlock()

	d.debugLog("dispatcher stopped")
}

// Enqueue queues a pass for job.State. It never waits on subscriber code.
// A job still pending for the same direction is replaced by this one, and
// a newer pending job for the other direction is dropped with it.
func (d *Dispatcher) Enqueue(job Job) error {
	if !job.State.Valid() {
		return fmt.Errorf("enqueue: %w", powerstate.ErrInvalidState)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != lifecycleRunning {
		return ErrNotRunning
	}

	l := &d.lanes[job.State]
	if l.pending != nil {
		l.coalesced++
		d.coalesced.Add(1)

		// A newer pending job in the other lane sits between the replaced
		// job and this one. The pair cancels out, so deliveries keep
		// alternating direction.
		o := &d.lanes[1-job.State]
		if o.pending != nil && o.pending.Generation > l.pending.Generation {
			l.coalesced += o.coalesced + 1
			d.coalesced.Add(1)
			d.debugLog("dispatch job cancelled",
				"state", 1-job.State,
				"generation", o.pending.Generation)
			o.pending = nil
			o.coalesced = 0
		}

		d.debugLog("dispatch job coalesced",
			"state", job.State,
			"replaced_generation", l.pending.Generation,
			"generation", job.Generation)
	}
	l.pending = &job
	d.notifyLocked()
	return nil
}

// Settle blocks until no pass is pending or running, or ctx is done.
func (d *Dispatcher) Settle(ctx context.Context) error {
	for {
		d.mu.Lock()
		idle := d.idleLocked()
		ch := d.changed
		d.mu.Unlock()

		if idle {
			return nil
		}

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Idle reports whether no pass is pending or running.
func (d *Dispatcher) Idle() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.idleLocked()
}

// Stats returns a snapshot of the dispatcher counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Passes:    d.passes.Load(),
		Failures:  d.failures.Load(),
		Coalesced: d.coalesced.Load(),
	}
}

func (d *Dispatcher) idleLocked() bool {
	for i := range d.lanes {
		if d.lanes[i].pending != nil || d.lanes[i].running {
			return false
		}
	}
	return true
}

// notifyLocked wakes everyone waiting on the current changed channel.
// Must be called with d.mu held.
func (d *Dispatcher) notifyLocked() {
	close(d.changed)
	d.changed = make(chan struct{})
}

// eligibleLocked reports whether the pending job of dir may start now.
func (d *Dispatcher) eligibleLocked(dir powerstate.State) bool {
	own := d.lanes[dir].pending
	other := &d.lanes[1-dir]
	if other.running {
		return false
	}
	if other.pending != nil && other.pending.Generation < own.Generation {
		return false
	}
	return true
}

// next blocks until a job for dir can start. It returns false when the
// dispatcher is stopping and dir has nothing left to run.
func (d *Dispatcher) next(dir powerstate.State) (Job, int, bool) {
	d.mu.Lock()
	for {
		l := &d.lanes[dir]
		if l.pending != nil && d.eligibleLocked(dir) {
			job := *l.pending
			coalesced := l.coalesced
			l.pending = nil
			l.coalesced = 0
			l.running = true
			d.notifyLocked()
			d.mu.Unlock()
			return job, coalesced, true
		}
		if l.pending == nil && d.state != lifecycleRunning {
			d.mu.Unlock()
			return Job{}, 0, false
		}

		ch := d.changed
		d.mu.Unlock()
		<-ch
		d.mu.Lock()
	}
}

func (d *Dispatcher) finish(dir powerstate.State) {
	d.mu.Lock()
	d.lanes[dir].running = false
	d.notifyLocked()
	d.mu.Unlock()
}

func (d *Dispatcher) worker(dir powerstate.State) {
	defer d.wg.Done()

	for {
		job, coalesced, ok := d.next(dir)
		if !ok {
			return
		}
		d.runPass(job, coalesced)
		d.finish(dir)
	}
}

// runPass walks the registry under its lock and invokes the callbacks for
// job.State.
func (d *Dispatcher) runPass(job Job, coalesced int) {
	start := time.Now()
	ctx := triggercontext.ContextWithTransition(d.ctx, triggercontext.Transition{
		Generation: job.Generation,
		Trigger:    job.Trigger,
		State:      job.State,
	})

	reverse := job.State == powerstate.Inactive
	var invoked, failed int

	d.registry.Walk(reverse, func(e subscription.Entry) {
		cb := e.Handler.Suspend
		if reverse {
			cb = e.Handler.Resume
		}
		if cb == nil {
			return
		}
		invoked++
		if !d.invoke(ctx, job, e, cb) {
			failed++
		}
	})

	elapsed := time.Since(start)
	d.passes.Add(1)

	d.journal.Log(log.Event{
		Timestamp:  time.Now(),
		InstanceID: d.config.InstanceID,
		Category:   log.CategoryDispatch,
		Generation: job.Generation,
		Dispatch: &log.DispatchEvent{
			State:     job.State,
			Handlers:  invoked,
			Failures:  failed,
			Coalesced: coalesced,
			Duration:  elapsed,
		},
	})

	d.debugLog("dispatch pass complete",
		"state", job.State,
		"generation", job.Generation,
		"handlers", invoked,
		"failures", failed,
		"duration", elapsed)
}

// invoke runs one callback, recovering panics. It returns false if the
// callback failed.
func (d *Dispatcher) invoke(ctx context.Context, job Job, e subscription.Entry, cb func(context.Context) error) (ok bool) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			d.reportFailure(job, e, fmt.Sprint(r), true)
			ok = false
		}
	}()

	err := cb(ctx)

	if elapsed := time.Since(start); d.config.SlowHandlerThreshold > 0 && elapsed > d.config.SlowHandlerThreshold {
		if d.logger != nil {
			d.logger.Warn("slow power handler",
				"handler", e.Label(),
				"state", job.State,
				"duration", elapsed)
		}
	}

	if err != nil {
		d.reportFailure(job, e, err.Error(), false)
		return false
	}
	return true
}

func (d *Dispatcher) reportFailure(job Job, e subscription.Entry, msg string, panicked bool) {
	d.failures.Add(1)

	if d.logger != nil {
		d.logger.Warn("power handler failed",
			"handler", e.Label(),
			"state", job.State,
			"generation", job.Generation,
			"error", msg,
			"panic", panicked)
	}

	d.journal.Log(log.Event{
		Timestamp:  time.Now(),
		InstanceID: d.config.InstanceID,
		Category:   log.CategoryError,
		Generation: job.Generation,
		Error: &log.ErrorEventData{
			Handler: e.Label(),
			State:   job.State,
			Message: msg,
			Panic:   panicked,
		},
	})
}

func (d *Dispatcher) debugLog(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}
