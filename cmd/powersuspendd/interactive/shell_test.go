package interactive

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powersuspend/powersuspend-go/pkg/control"
	"github.com/powersuspend/powersuspend-go/pkg/powerstate"
	"github.com/powersuspend/powersuspend-go/pkg/service"
	"github.com/powersuspend/powersuspend-go/pkg/version"
)

// syncBuffer is a bytes.Buffer safe for writes from dispatch workers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

func newTestShell(t *testing.T, mode powerstate.Mode) (*Shell, *service.PowerService, *syncBuffer) {
	t.Helper()
	cfg := service.DefaultConfig()
	cfg.InitialMode = mode
	svc, err := service.New(cfg)
	require.NoError(t, err)
	require.NoError(t, svc.Start(context.Background()))
	t.Cleanup(svc.Stop)

	surface, err := control.NewPowerSurface(svc)
	require.NoError(t, err)

	out := &syncBuffer{}
	return newShell(svc, surface, out), svc, out
}

func settle(t *testing.T, svc *service.PowerService) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, svc.Settle(ctx))
}

func TestShellStateCommand(t *testing.T) {
	sh, svc, out := newTestShell(t, powerstate.Userspace)

	assert.False(t, sh.Exec("state 1"))
	assert.Contains(t, out.String(), "state = 1")
	assert.Equal(t, powerstate.Active, svc.State())

	out.Reset()
	sh.Exec("state")
	assert.Contains(t, out.String(), "state = 1")
}

func TestShellStateRefusedOutsideUserspace(t *testing.T) {
	sh, svc, out := newTestShell(t, powerstate.Panel)

	sh.Exec("state 1")
	assert.Contains(t, out.String(), "Error:")
	assert.Equal(t, powerstate.Inactive, svc.State())
}

func TestShellModeAndTriggers(t *testing.T) {
	sh, svc, out := newTestShell(t, powerstate.Userspace)

	sh.Exec("autosleep 1")
	assert.Contains(t, out.String(), "ignored in USERSPACE mode")
	assert.False(t, svc.Suspended())

	sh.Exec("mode 0")
	assert.Equal(t, powerstate.Autosleep, svc.Mode())

	out.Reset()
	sh.Exec("autosleep 1")
	assert.Contains(t, out.String(), "AUTOSLEEP hook accepted: ACTIVE")
	assert.True(t, svc.Suspended())

	out.Reset()
	sh.Exec("panel 0")
	assert.Contains(t, out.String(), "ignored in AUTOSLEEP mode")
	assert.True(t, svc.Suspended())

	out.Reset()
	sh.Exec("panel")
	assert.Contains(t, out.String(), "Usage: panel <0|1>")
}

func TestShellProbe(t *testing.T) {
	sh, svc, out := newTestShell(t, powerstate.Userspace)

	sh.Exec("probe wifi")
	assert.Len(t, svc.Handlers(), 1)

	sh.Exec("state 1")
	settle(t, svc)
	assert.Contains(t, out.String(), "[wifi] suspend")

	sh.Exec("probe wifi")
	assert.Contains(t, out.String(), "Probe wifi already registered")

	sh.Exec("handlers")
	assert.Contains(t, out.String(), "wifi")

	sh.Exec("unprobe wifi")
	assert.Empty(t, svc.Handlers())

	out.Reset()
	sh.Exec("unprobe wifi")
	assert.Contains(t, out.String(), "No probe named wifi")
}

func TestShellMisc(t *testing.T) {
	sh, _, out := newTestShell(t, powerstate.Hybrid)

	sh.Exec("version")
	assert.Contains(t, out.String(), version.Identifier())

	sh.Exec("attrs")
	assert.Contains(t, out.String(), "mode     rw  3")

	sh.Exec("status")
	assert.Contains(t, out.String(), "Mode:       HYBRID")

	sh.Exec("frobnicate")
	assert.Contains(t, out.String(), "Unknown command: frobnicate")

	assert.False(t, sh.Exec("   "))
	assert.True(t, sh.Exec("quit"))
	assert.True(t, sh.Exec("Q"))
}

func TestShellEventEcho(t *testing.T) {
	sh, _, out := newTestShell(t, powerstate.Userspace)

	sh.handleEvent(service.Event{
		Type:       service.EventTransition,
		Trigger:    powerstate.TriggerOperator,
		OldState:   powerstate.Inactive,
		NewState:   powerstate.Active,
		Generation: 3,
	})
	assert.Contains(t, out.String(), "[gen 3] OPERATOR: INACTIVE -> ACTIVE")

	sh.handleEvent(service.Event{Type: service.EventModeChanged, OldMode: powerstate.Userspace, NewMode: powerstate.Panel})
	assert.Contains(t, out.String(), "[mode] USERSPACE -> PANEL")
}
