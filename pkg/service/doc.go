// Package service provides PowerService, the power-suspend coordinator.
//
// A PowerService owns the power state, the suspend mode, the handler
// registry and the dispatcher that notifies subscribers. There is no package
// level state; independent instances can run side by side.
//
// # Transitions
//
// The state is edge-triggered. A request for the state that is already
// current is a no-op. A request for the other state updates the state and
// the suspended flag, assigns the next generation number and queues exactly
// one dispatch job, all inside a short critical section that never waits on
// subscriber code. Subscribers are notified later on the dispatcher workers:
// suspend callbacks in registration order, resume callbacks in reverse.
//
// # Mode gate
//
// The mode decides which trigger source may request transitions:
//
//	Autosleep  autosleep hook only
//	Userspace  operator writes only (default)
//	Panel      panel hook only
//	Hybrid     autosleep and panel hooks
//
// Unauthorized requests are ignored. Operator writes in a non-userspace mode
// fail with ErrInvalidOperation. Mode changes apply to subsequent requests.
//
// # Locking
//
// The service mutex guards the state and generation and is never held while
// a callback runs. Lock order is service mutex, then dispatcher queue mutex.
// The registry mutex is taken only by Register, Unregister and dispatcher
// passes.
//
// Example usage:
//
//	svc, err := service.New(service.DefaultConfig())
//	svc.Start(ctx)
//	defer svc.Stop()
//
//	svc.Subscribe(&subscription.Handler{
//		Name:    "display",
//		Suspend: func(ctx context.Context) error { return panel.Off() },
//		Resume:  func(ctx context.Context) error { return panel.On() },
//	})
//	svc.NotifyAutosleep(powerstate.Active)
package service
