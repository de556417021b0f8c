package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/powersuspend/powersuspend-go/internal/config"
	"github.com/powersuspend/powersuspend-go/pkg/control"
	"github.com/powersuspend/powersuspend-go/pkg/discovery"
	"github.com/powersuspend/powersuspend-go/pkg/discovery/mocks"
	"github.com/powersuspend/powersuspend-go/pkg/log"
	"github.com/powersuspend/powersuspend-go/pkg/powerstate"
	"github.com/powersuspend/powersuspend-go/pkg/transport"
	"github.com/powersuspend/powersuspend-go/pkg/version"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.HTTP.Listen = "127.0.0.1:0"
	cfg.Log.Journal = filepath.Join(t.TempDir(), "events.plog")
	return cfg
}

// runDaemon starts d and returns a stop function that cancels it and
// waits for Run to return.
func runDaemon(t *testing.T, d *Daemon) func() error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	select {
	case <-d.Ready():
	case err := <-done:
		cancel()
		t.Fatalf("daemon exited early: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("daemon not ready")
	}

	return func() error {
		cancel()
		select {
		case err := <-done:
			return err
		case <-time.After(5 * time.Second):
			return errors.New("daemon did not stop")
		}
	}
}

func clientFor(d *Daemon) *transport.Client {
	return transport.NewClient(fmt.Sprintf("http://127.0.0.1:%d", d.HTTPPort()))
}

func TestRunServesAPIAndJournals(t *testing.T) {
	cfg := testConfig(t)
	d, err := New(Options{Config: cfg})
	require.NoError(t, err)
	stop := runDaemon(t, d)

	ctx := context.Background()
	client := clientFor(d)

	value, err := client.Read(ctx, control.EndpointVersion)
	require.NoError(t, err)
	assert.Equal(t, version.Identifier(), value)

	require.NoError(t, client.Write(ctx, control.EndpointState, "1"))
	require.NoError(t, stop())
	assert.True(t, d.Service().Suspended())

	reader, err := log.NewReader(cfg.Log.Journal)
	require.NoError(t, err)
	defer reader.Close()

	var categories []log.Category
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		categories = append(categories, event.Category)
	}
	assert.Contains(t, categories, log.CategoryTransition)
	assert.Contains(t, categories, log.CategoryDispatch)
}

func TestRunAdvertisesAndUpdatesMode(t *testing.T) {
	cfg := testConfig(t)
	cfg.MDNS.Enabled = true
	cfg.MDNS.Instance = "test-coordinator"

	adv := mocks.NewMockAdvertiser(t)
	advertised := make(chan *discovery.ServiceInfo, 1)
	updated := make(chan *discovery.ServiceInfo, 1)
	adv.EXPECT().Advertise(mock.Anything, mock.Anything).RunAndReturn(
		func(_ context.Context, info *discovery.ServiceInfo) error {
			advertised <- info
			return nil
		})
	adv.EXPECT().Update(mock.Anything).Run(func(info *discovery.ServiceInfo) {
		updated <- info
	}).Return(nil)
	adv.EXPECT().Stop().Return(nil)

	d, err := New(Options{Config: cfg, Advertiser: adv})
	require.NoError(t, err)
	stop := runDaemon(t, d)
	defer func() { require.NoError(t, stop()) }()

	var info *discovery.ServiceInfo
	select {
	case info = <-advertised:
	case <-time.After(5 * time.Second):
		t.Fatal("not advertised")
	}
	assert.Equal(t, "test-coordinator", info.InstanceName)
	assert.Equal(t, d.HTTPPort(), info.Port)
	assert.Equal(t, version.Current, info.Version)
	assert.Equal(t, powerstate.Userspace, info.Mode)
	assert.Equal(t, d.Service().InstanceID(), info.InstanceID)

	require.NoError(t, clientFor(d).Write(context.Background(), control.EndpointMode, "3"))

	select {
	case info = <-updated:
		assert.Equal(t, powerstate.Hybrid, info.Mode)
		assert.Equal(t, "test-coordinator", info.InstanceName)
	case <-time.After(5 * time.Second):
		t.Fatal("advertisement not updated")
	}
}

func TestAdvertiseFailureKeepsAPI(t *testing.T) {
	cfg := testConfig(t)
	cfg.MDNS.Enabled = true

	adv := mocks.NewMockAdvertiser(t)
	adv.EXPECT().Advertise(mock.Anything, mock.Anything).Return(errors.New("no multicast"))
	adv.EXPECT().Stop().Return(nil)

	d, err := New(Options{Config: cfg, Advertiser: adv})
	require.NoError(t, err)
	stop := runDaemon(t, d)

	_, err = clientFor(d).Read(context.Background(), control.EndpointMode)
	assert.NoError(t, err)
	require.NoError(t, stop())
}

func TestRunWithoutHTTP(t *testing.T) {
	cfg := config.Default()
	cfg.HTTP.Listen = ""

	d, err := New(Options{Config: cfg})
	require.NoError(t, err)
	stop := runDaemon(t, d)

	assert.Zero(t, d.HTTPPort())
	require.NoError(t, d.Surface().Write(control.EndpointState, "1"))
	require.NoError(t, stop())
	assert.Equal(t, powerstate.Active, d.Service().State())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)

	cfg := config.Default()
	cfg.Mode = "sleepy"
	_, err = New(Options{Config: cfg})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestDefaultInstanceName(t *testing.T) {
	d, err := New(Options{Config: config.Default()})
	require.NoError(t, err)

	name := d.instanceName()
	assert.True(t, strings.HasPrefix(name, "powersuspend"))
	assert.LessOrEqual(t, len(name), discovery.MaxInstanceNameLen)
	assert.NoError(t, discovery.ValidateInstanceName(name))
}
