// Package interactive provides the operator console for powersuspendd.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/google/uuid"

	"github.com/powersuspend/powersuspend-go/pkg/control"
	"github.com/powersuspend/powersuspend-go/pkg/powerstate"
	"github.com/powersuspend/powersuspend-go/pkg/service"
	"github.com/powersuspend/powersuspend-go/pkg/subscription"
)

// Shell is a readline console bound to one coordinator.
type Shell struct {
	svc     *service.PowerService
	surface *control.Surface
	rl      *readline.Instance
	out     io.Writer

	mu     sync.Mutex
	probes map[string]uuid.UUID
}

// New creates the console. Call Bind before Run. Stdout is usable
// immediately so the process logger can write above the prompt.
func New() (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "power> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("status"),
			readline.PcItem("state"),
			readline.PcItem("mode"),
			readline.PcItem("autosleep"),
			readline.PcItem("panel"),
			readline.PcItem("handlers"),
			readline.PcItem("attrs"),
			readline.PcItem("probe"),
			readline.PcItem("unprobe"),
			readline.PcItem("version"),
			readline.PcItem("help"),
			readline.PcItem("quit"),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Shell{
		rl:     rl,
		out:    rl.Stdout(),
		probes: make(map[string]uuid.UUID),
	}, nil
}

func newShell(svc *service.PowerService, surface *control.Surface, out io.Writer) *Shell {
	return &Shell{
		svc:     svc,
		surface: surface,
		out:     out,
		probes:  make(map[string]uuid.UUID),
	}
}

// Bind attaches the console to a coordinator. Transition events are
// echoed to the console.
func (s *Shell) Bind(svc *service.PowerService, surface *control.Surface) {
	s.svc = svc
	s.surface = surface
	svc.OnEvent(s.handleEvent)
}

// Stdout returns a writer that coordinates with the prompt.
func (s *Shell) Stdout() io.Writer {
	return s.out
}

// Run reads commands until quit, EOF or ctx is done. cancel is called
// when the operator exits.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}

		if s.Exec(line) {
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}
	}
}

// Exec runs one command line. It returns true when the operator asked to quit.
func (s *Shell) Exec(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()
	case "status", "s":
		s.cmdStatus()
	case "state":
		s.cmdEndpoint(control.EndpointState, args)
	case "mode":
		s.cmdEndpoint(control.EndpointMode, args)
	case "version":
		s.cmdEndpoint(control.EndpointVersion, nil)
	case "autosleep":
		s.cmdTrigger(powerstate.TriggerAutosleep, args)
	case "panel":
		s.cmdTrigger(powerstate.TriggerPanel, args)
	case "handlers", "h":
		s.cmdHandlers()
	case "attrs", "ls":
		s.cmdAttrs()
	case "probe":
		s.cmdProbe(args)
	case "unprobe":
		s.cmdUnprobe(args)
	case "quit", "exit", "q":
		return true
	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
Power Coordinator Commands:
  Control surface:
    state [0|1]        - Read or write the power state (write needs userspace mode)
    mode [0-3]         - Read or write the mode (autosleep, userspace, panel, hybrid)
    version            - Show the coordinator version
    attrs              - List all control endpoints

  Hardware hooks:
    autosleep <0|1>    - Simulate the autosleep hook
    panel <0|1>        - Simulate the display-panel hook

  Subscribers:
    handlers           - List registered handlers
    probe <name>       - Register a handler that prints its callbacks
    unprobe <name>     - Remove a probe handler

  General:
    status             - Show coordinator status
    help               - Show this help
    quit               - Exit`)
}

func (s *Shell) cmdStatus() {
	stats := s.svc.DispatchStats()
	fmt.Fprintf(s.out, "Instance:   %s\n", s.svc.InstanceID())
	fmt.Fprintf(s.out, "State:      %s\n", s.svc.State())
	fmt.Fprintf(s.out, "Mode:       %s\n", s.svc.Mode())
	fmt.Fprintf(s.out, "Generation: %d\n", s.svc.Generation())
	fmt.Fprintf(s.out, "Handlers:   %d\n", len(s.svc.Handlers()))
	fmt.Fprintf(s.out, "Passes:     %d (failures %d, coalesced %d)\n", stats.Passes, stats.Failures, stats.Coalesced)
}

func (s *Shell) cmdEndpoint(name string, args []string) {
	if len(args) == 0 {
		value, err := s.surface.Read(name)
		if err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(s.out, "%s = %s\n", name, value)
		return
	}

	if err := s.surface.Write(name, args[0]); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	value, _ := s.surface.Read(name)
	fmt.Fprintf(s.out, "%s = %s\n", name, value)
}

func (s *Shell) cmdTrigger(trigger powerstate.Trigger, args []string) {
	if len(args) != 1 {
		fmt.Fprintf(s.out, "Usage: %s <0|1>\n", strings.ToLower(trigger.String()))
		return
	}
	state, err := powerstate.ParseState(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	var ok bool
	if trigger == powerstate.TriggerAutosleep {
		ok = s.svc.NotifyAutosleep(state)
	} else {
		ok = s.svc.NotifyPanel(state)
	}
	if !ok {
		fmt.Fprintf(s.out, "%s hook ignored in %s mode\n", trigger, s.svc.Mode())
		return
	}
	fmt.Fprintf(s.out, "%s hook accepted: %s\n", trigger, state)
}

func (s *Shell) cmdHandlers() {
	handlers := s.svc.Handlers()
	if len(handlers) == 0 {
		fmt.Fprintln(s.out, "No handlers registered")
		return
	}
	for i, h := range handlers {
		name := h.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(s.out, "  %2d. %-20s %s suspend=%t resume=%t\n", i+1, name, shortID(h.ID), h.HasSuspend, h.HasResume)
	}
}

func (s *Shell) cmdAttrs() {
	for _, ep := range s.surface.Endpoints() {
		access := "ro"
		if ep.Writable {
			access = "rw"
		}
		fmt.Fprintf(s.out, "  %-8s %s  %-16s %s\n", ep.Name, access, ep.Value, ep.Description)
	}
}

func (s *Shell) cmdProbe(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: probe <name>")
		return
	}
	name := args[0]

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.probes[name]; exists {
		fmt.Fprintf(s.out, "Probe %s already registered\n", name)
		return
	}
	out := s.out
	s.probes[name] = s.svc.Subscribe(&subscription.Handler{
		Name: name,
		Suspend: func(context.Context) error {
			fmt.Fprintf(out, "[%s] suspend\n", name)
			return nil
		},
		Resume: func(context.Context) error {
			fmt.Fprintf(out, "[%s] resume\n", name)
			return nil
		},
	})
	fmt.Fprintf(s.out, "Probe %s registered\n", name)
}

func (s *Shell) cmdUnprobe(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: unprobe <name>")
		return
	}

	s.mu.Lock()
	id, ok := s.probes[args[0]]
	delete(s.probes, args[0])
	s.mu.Unlock()

	if !ok {
		fmt.Fprintf(s.out, "No probe named %s\n", args[0])
		return
	}
	// Waits for an in-progress pass to finish.
	s.svc.Unsubscribe(id)
	fmt.Fprintf(s.out, "Probe %s removed\n", args[0])
}

// handleEvent echoes coordinator events.
func (s *Shell) handleEvent(event service.Event) {
	switch event.Type {
	case service.EventTransition:
		fmt.Fprintf(s.out, "\n[gen %d] %s: %s -> %s\n", event.Generation, event.Trigger, event.OldState, event.NewState)
	case service.EventRejected:
		fmt.Fprintf(s.out, "\n[rejected] %s request for %s\n", event.Trigger, event.NewState)
	case service.EventModeChanged:
		fmt.Fprintf(s.out, "\n[mode] %s -> %s\n", event.OldMode, event.NewMode)
	}
}

func shortID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}
