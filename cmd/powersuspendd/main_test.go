package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powersuspend/powersuspend-go/pkg/control"
	"github.com/powersuspend/powersuspend-go/pkg/log"
	"github.com/powersuspend/powersuspend-go/pkg/powerstate"
	"github.com/powersuspend/powersuspend-go/pkg/service"
	"github.com/powersuspend/powersuspend-go/pkg/transport"
	"github.com/powersuspend/powersuspend-go/pkg/version"
)

func startCoordinator(t *testing.T, mode powerstate.Mode) (*service.PowerService, string) {
	t.Helper()
	cfg := service.DefaultConfig()
	cfg.InitialMode = mode
	svc, err := service.New(cfg)
	require.NoError(t, err)
	require.NoError(t, svc.Start(context.Background()))
	t.Cleanup(svc.Stop)

	surface, err := control.NewPowerSurface(svc)
	require.NoError(t, err)

	scfg := transport.DefaultServerConfig()
	scfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := httptest.NewServer(transport.NewServer(scfg, surface, svc).Handler())
	t.Cleanup(ts.Close)
	return svc, ts.URL
}

// run executes the root command with args and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version.Identifier()+"\n", out)
}

func TestGetAndSet(t *testing.T) {
	svc, url := startCoordinator(t, powerstate.Userspace)

	out, err := run(t, "--server", url, "get")
	require.NoError(t, err)
	assert.Contains(t, out, "mode     rw  1")
	assert.Contains(t, out, "version  ro  "+version.Identifier())

	_, err = run(t, "--server", url, "set", "state", "1")
	require.NoError(t, err)
	assert.True(t, svc.Suspended())

	out, err = run(t, "--server", url, "get", "state")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)
}

func TestSetStateRefused(t *testing.T) {
	_, url := startCoordinator(t, powerstate.Panel)

	_, err := run(t, "--server", url, "set", "state", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_operation")
}

func TestTriggerCommand(t *testing.T) {
	svc, url := startCoordinator(t, powerstate.Panel)

	out, err := run(t, "--server", url, "trigger", "autosleep", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "AUTOSLEEP hook ignored")

	out, err = run(t, "--server", url, "trigger", "panel", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "PANEL hook accepted")
	assert.True(t, svc.Suspended())
}

func TestHandlersCommand(t *testing.T) {
	_, url := startCoordinator(t, powerstate.Userspace)

	out, err := run(t, "--server", url, "handlers")
	require.NoError(t, err)
	assert.Contains(t, out, "No handlers registered")
}

func TestJournalCommands(t *testing.T) {
	path := t.TempDir() + "/events.plog"
	fl, err := log.NewFileLogger(path)
	require.NoError(t, err)
	for gen := uint64(1); gen <= 3; gen++ {
		fl.Log(log.Event{
			InstanceID: "inst-1",
			Category:   log.CategoryTransition,
			Generation: gen,
			Transition: &log.TransitionEvent{NewState: powerstate.State(gen % 2), Outcome: log.OutcomeApplied},
		})
	}
	require.NoError(t, fl.Close())

	out, err := run(t, "journal", "stats", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Total Events: 3")

	out, err = run(t, "journal", "view", "--generation", "2", path)
	require.NoError(t, err)
	assert.Contains(t, out, "gen=2")
	assert.Equal(t, 1, strings.Count(out, "TRANSITION"), out)

	_, err = run(t, "journal", "view", "--category", "bogus", path)
	assert.Error(t, err)
}

func TestPrintNotification(t *testing.T) {
	var buf bytes.Buffer
	n := transport.Notification{Direction: transport.DirectionSuspend, State: 1, Generation: 9, Trigger: "PANEL"}

	printNotification(&buf, n, false)
	assert.Contains(t, buf.String(), "gen=9 suspend trigger=PANEL")

	buf.Reset()
	printNotification(&buf, n, true)
	assert.Contains(t, buf.String(), fmt.Sprintf(`"generation":%d`, 9))
}
