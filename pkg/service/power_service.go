package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/powersuspend/powersuspend-go/pkg/dispatch"
	"github.com/powersuspend/powersuspend-go/pkg/log"
	"github.com/powersuspend/powersuspend-go/pkg/powerstate"
	"github.com/powersuspend/powersuspend-go/pkg/subscription"
)

// PowerService coordinates power-state transitions and subscriber
// notifications.
type PowerService struct {
	config     Config
	logger     *slog.Logger
	journal    log.Logger
	instanceID string

	registry   *subscription.Registry
	dispatcher *dispatch.Dispatcher

	mu            sync.Mutex
	lifecycle     ServiceState
	state         powerstate.State
	generation    uint64
	eventHandlers []EventHandler

	suspended atomic.Bool
	mode      atomic.Uint32
}

// New creates a PowerService in state Inactive with config.InitialMode.
func New(config Config) (*PowerService, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	instanceID := config.InstanceID
	if instanceID == "" {
		instanceID = uuid.NewString()
	}

	journal := config.Journal
	if journal == nil {
		journal = log.NoopLogger{}
	}

	registry := subscription.NewRegistry()
	s := &PowerService{
		config:     config,
		logger:     config.Logger,
		journal:    journal,
		instanceID: instanceID,
		registry:   registry,
		dispatcher: dispatch.New(registry, dispatch.Config{
			Logger:               config.Logger,
			Journal:              journal,
			InstanceID:           instanceID,
			SlowHandlerThreshold: config.SlowHandlerThreshold,
		}),
		state: powerstate.Inactive,
	}
	s.mode.Store(uint32(config.InitialMode))

	return s, nil
}

// Start starts the dispatcher workers. Transitions are rejected until Start
// returns successfully.
func (s *PowerService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lifecycle != StateIdle {
		return ErrAlreadyStarted
	}

	if err := s.dispatcher.Start(ctx); err != nil {
		return fmt.Errorf("%w: start dispatch workers: %v", ErrResourceExhausted, err)
	}
	s.lifecycle = StateRunning

	s.debugLog("power service started",
		"instance", s.instanceID,
		"mode", s.Mode())
	return nil
}

// Stop rejects further transitions, waits for queued notifications to be
// delivered and stops the workers.
func (s *PowerService) Stop() {
	s.mu.Lock()
	if s.lifecycle != StateRunning {
		s.mu.Unlock()
		return
	}
	s.lifecycle = StateStopping
	s.mu.Unlock()

	s.dispatcher.Stop()

	s.mu.Lock()
	s.lifecycle = StateStopped
	s.mu.Unlock()

	s.debugLog("power service stopped", "instance", s.instanceID)
}

// OnEvent registers an event handler. Handlers run on their own goroutine.
func (s *PowerService) OnEvent(handler EventHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventHandlers = append(s.eventHandlers, handler)
}

// InstanceID returns the journal instance identifier.
func (s *PowerService) InstanceID() string {
	return s.instanceID
}

// LifecycleState returns the service lifecycle state.
func (s *PowerService) LifecycleState() ServiceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lifecycle
}

// State returns the current power state.
func (s *PowerService) State() powerstate.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Suspended reports whether the device is suspended. It never blocks.
func (s *PowerService) Suspended() bool {
	return s.suspended.Load()
}

// Generation returns the generation of the last accepted transition.
func (s *PowerService) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Mode returns the current suspend mode.
func (s *PowerService) Mode() powerstate.Mode {
	return powerstate.Mode(s.mode.Load())
}

// SetMode changes the mode for subsequent requests. Invalid modes are
// ignored and false is returned. Changing the mode never causes a transition.
func (s *PowerService) SetMode(m powerstate.Mode) bool {
	if !m.Valid() {
		s.debugLog("ignoring invalid mode", "mode", uint8(m))
		return false
	}

	old := powerstate.Mode(s.mode.Swap(uint32(m)))
	if old == m {
		return true
	}

	s.journal.Log(log.Event{
		Timestamp:  time.Now(),
		InstanceID: s.instanceID,
		Category:   log.CategoryMode,
		Mode:       &log.ModeEvent{OldMode: old, NewMode: m},
	})
	s.debugLog("mode changed", "old", old, "new", m)
	s.emitEvent(Event{Type: EventModeChanged, OldMode: old, NewMode: m})
	return true
}

// NotifyAutosleep is the autosleep hook. It returns whether the current
// mode authorizes autosleep requests.
func (s *PowerService) NotifyAutosleep(state powerstate.State) bool {
	return s.notify(powerstate.TriggerAutosleep, state)
}

// NotifyPanel is the panel hook. It returns whether the current mode
// authorizes panel requests.
func (s *PowerService) NotifyPanel(state powerstate.State) bool {
	return s.notify(powerstate.TriggerPanel, state)
}

func (s *PowerService) notify(trigger powerstate.Trigger, state powerstate.State) bool {
	if !s.Mode().Allows(trigger) {
		s.reject(trigger, state)
		return false
	}
	if _, err := s.requestTransition(trigger, state); err != nil {
		s.debugLog("transition request failed", "trigger", trigger, "error", err)
	}
	return true
}

// SetState is the operator entry point. It fails with ErrInvalidOperation
// unless the mode is Userspace.
func (s *PowerService) SetState(state powerstate.State) error {
	if !s.Mode().Allows(powerstate.TriggerOperator) {
		s.reject(powerstate.TriggerOperator, state)
		return ErrInvalidOperation
	}
	_, err := s.requestTransition(powerstate.TriggerOperator, state)
	return err
}

func (s *PowerService) reject(trigger powerstate.Trigger, state powerstate.State) {
	mode := s.Mode()

	s.mu.Lock()
	current := s.state
	s.mu.Unlock()

	s.journal.Log(s.transitionEvent(trigger, current, state, log.OutcomeRejected, mode, 0))

	s.debugLog("trigger not authorized", "trigger", trigger, "mode", mode)
	s.emitEvent(Event{
		Type:     EventRejected,
		Trigger:  trigger,
		OldState: current,
		NewState: state,
		NewMode:  mode,
	})
}

// requestTransition applies an edge-triggered state change. It returns true
// if the state changed and a dispatch job was queued.
func (s *PowerService) requestTransition(trigger powerstate.Trigger, newState powerstate.State) (bool, error) {
	if !newState.Valid() {
		return false, fmt.Errorf("request transition: %w", powerstate.ErrInvalidState)
	}
	mode := s.Mode()

	s.mu.Lock()
	if s.lifecycle != StateRunning {
		s.mu.Unlock()
		return false, ErrNotRunning
	}

	old := s.state
	if old == newState {
		s.mu.Unlock()
		s.journal.Log(s.transitionEvent(trigger, old, newState, log.OutcomeUnchanged, mode, 0))
		return false, nil
	}

	gen := s.generation + 1
	err := s.dispatcher.Enqueue(dispatch.Job{
		State:      newState,
		Generation: gen,
		Trigger:    trigger,
	})
	if err != nil {
		s.mu.Unlock()
		return false, fmt.Errorf("%w: queue dispatch job: %v", ErrResourceExhausted, err)
	}

	s.generation = gen
	s.state = newState
	s.suspended.Store(newState == powerstate.Active)
	event := s.transitionEvent(trigger, old, newState, log.OutcomeApplied, mode, gen)
	s.mu.Unlock()

	// Journal sinks may write to a terminal; keep them out of the state lock.
	s.journal.Log(event)

	s.debugLog("power state changed",
		"trigger", trigger,
		"old", old,
		"new", newState,
		"generation", gen)
	s.emitEvent(Event{
		Type:       EventTransition,
		Trigger:    trigger,
		OldState:   old,
		NewState:   newState,
		Generation: gen,
		NewMode:    mode,
	})
	return true, nil
}

func (s *PowerService) transitionEvent(trigger powerstate.Trigger, old, next powerstate.State, outcome log.Outcome, mode powerstate.Mode, gen uint64) log.Event {
	return log.Event{
		Timestamp:  time.Now(),
		InstanceID: s.instanceID,
		Category:   log.CategoryTransition,
		Generation: gen,
		Transition: &log.TransitionEvent{
			Trigger:  trigger,
			OldState: old,
			NewState: next,
			Outcome:  outcome,
			Mode:     mode,
		},
	}
}

// Subscribe registers a handler and returns its subscription handle.
// A nil handler is ignored and uuid.Nil is returned.
func (s *PowerService) Subscribe(h *subscription.Handler) uuid.UUID {
	id := s.registry.Register(h)
	if id != uuid.Nil {
		s.debugLog("handler subscribed", "id", id, "name", h.Name)
	}
	return id
}

// Unsubscribe removes the handler registered under id. Once it returns, the
// handler receives no further callbacks. Unknown handles are ignored.
func (s *PowerService) Unsubscribe(id uuid.UUID) bool {
	removed := s.registry.Remove(id)
	if removed {
		s.debugLog("handler unsubscribed", "id", id)
	}
	return removed
}

// Register registers a handler by identity. See Subscribe.
func (s *PowerService) Register(h *subscription.Handler) uuid.UUID {
	return s.Subscribe(h)
}

// Unregister removes the first registration of h. Once it returns, h
// receives no further callbacks. Unknown handlers are ignored.
func (s *PowerService) Unregister(h *subscription.Handler) bool {
	return s.registry.Unregister(h)
}

// Handlers returns a snapshot of the registered handlers in order.
func (s *PowerService) Handlers() []subscription.Info {
	return s.registry.Entries()
}

// Registry returns the handler registry.
func (s *PowerService) Registry() *subscription.Registry {
	return s.registry
}

// Settle blocks until every queued notification has been delivered, or ctx
// is done.
func (s *PowerService) Settle(ctx context.Context) error {
	return s.dispatcher.Settle(ctx)
}

// DispatchStats returns the dispatcher counters.
func (s *PowerService) DispatchStats() dispatch.Stats {
	return s.dispatcher.Stats()
}

// emitEvent sends an event to all registered handlers.
func (s *PowerService) emitEvent(event Event) {
	s.mu.Lock()
	handlers := s.eventHandlers
	s.mu.Unlock()

	for _, handler := range handlers {
		go handler(event)
	}
}

// debugLog logs a debug message if logging is enabled.
func (s *PowerService) debugLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
