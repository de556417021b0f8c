// Package daemon wires a PowerService to its control surface, HTTP API,
// mDNS advertisement and event journal.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/powersuspend/powersuspend-go/internal/config"
	"github.com/powersuspend/powersuspend-go/pkg/control"
	"github.com/powersuspend/powersuspend-go/pkg/discovery"
	"github.com/powersuspend/powersuspend-go/pkg/log"
	"github.com/powersuspend/powersuspend-go/pkg/service"
	"github.com/powersuspend/powersuspend-go/pkg/transport"
	"github.com/powersuspend/powersuspend-go/pkg/version"
)

// Options configures a Daemon.
type Options struct {
	Config *config.Config

	// Logger is the process logger. Nil discards.
	Logger *slog.Logger

	// Advertiser overrides the mDNS advertiser used when mdns.enabled is set.
	Advertiser discovery.Advertiser
}

// Daemon owns one coordinator and the surfaces exposing it.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger

	svc        *service.PowerService
	surface    *control.Surface
	server     *transport.Server
	advertiser discovery.Advertiser
	journal    *log.FileLogger

	ready chan struct{}

	mu   sync.Mutex
	info *discovery.ServiceInfo
}

// New builds the daemon. Nothing is started until Run.
func New(opts Options) (*Daemon, error) {
	if opts.Config == nil {
		return nil, errors.New("daemon: nil config")
	}
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	d := &Daemon{cfg: cfg, logger: logger, ready: make(chan struct{})}

	journals := []log.Logger{log.NewSlogAdapter(logger)}
	if cfg.Log.Journal != "" {
		fl, err := log.NewFileLogger(cfg.Log.Journal)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		d.journal = fl
		journals = append(journals, fl)
	}

	mode, _ := cfg.PowerMode()
	scfg := service.DefaultConfig()
	scfg.InitialMode = mode
	scfg.SlowHandlerThreshold = cfg.Dispatch.SlowHandlerThreshold
	scfg.Logger = logger
	scfg.Journal = log.NewMultiLogger(journals...)

	svc, err := service.New(scfg)
	if err != nil {
		d.closeJournal()
		return nil, err
	}
	d.svc = svc

	surface, err := control.NewPowerSurface(svc)
	if err != nil {
		d.closeJournal()
		return nil, err
	}
	d.surface = surface

	if cfg.HTTP.Listen != "" {
		tcfg := transport.DefaultServerConfig()
		tcfg.ListenAddress = cfg.HTTP.Listen
		tcfg.EventBuffer = cfg.HTTP.EventBuffer
		tcfg.Logger = logger
		d.server = transport.NewServer(tcfg, surface, svc)
	}

	if cfg.MDNS.Enabled {
		d.advertiser = opts.Advertiser
		if d.advertiser == nil {
			acfg := discovery.DefaultAdvertiserConfig()
			acfg.Interface = cfg.MDNS.Interface
			adv, err := discovery.NewMDNSAdvertiser(acfg)
			if err != nil {
				d.closeJournal()
				return nil, err
			}
			d.advertiser = adv
		}
	}

	return d, nil
}

// Service returns the coordinator.
func (d *Daemon) Service() *service.PowerService {
	return d.svc
}

// Surface returns the control surface.
func (d *Daemon) Surface() *control.Surface {
	return d.surface
}

// Ready is closed once the coordinator runs and the HTTP listener, if
// any, is bound.
func (d *Daemon) Ready() <-chan struct{} {
	return d.ready
}

// HTTPPort returns the bound API port. Valid after Ready.
func (d *Daemon) HTTPPort() uint16 {
	if d.server == nil {
		return 0
	}
	return d.server.Port()
}

// Run starts all components and blocks until ctx is cancelled or the HTTP
// server fails. Everything is stopped before Run returns.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.svc.Start(ctx); err != nil {
		d.closeJournal()
		return err
	}
	defer d.shutdown()

	d.logger.Info("power coordinator started",
		"instance", d.svc.InstanceID(),
		"mode", d.svc.Mode().String(),
		"version", version.Current)

	if d.server == nil {
		close(d.ready)
		<-ctx.Done()
		return nil
	}

	addr, err := d.server.Listen()
	if err != nil {
		return err
	}
	d.logger.Info("http api listening", "addr", addr.String())
	close(d.ready)

	if d.advertiser != nil {
		if err := d.advertise(ctx); err != nil {
			// The API stays usable without discovery.
			d.logger.Warn("mdns advertisement failed", "err", err)
		}
	}

	return d.server.Serve(ctx)
}

func (d *Daemon) advertise(ctx context.Context) error {
	info := &discovery.ServiceInfo{
		InstanceName: d.instanceName(),
		Port:         d.server.Port(),
		Version:      version.Current,
		APIPath:      discovery.DefaultAPIPath,
		InstanceID:   d.svc.InstanceID(),
		Mode:         d.svc.Mode(),
		HasMode:      true,
	}
	d.mu.Lock()
	d.info = info
	d.mu.Unlock()

	if err := d.advertiser.Advertise(ctx, info); err != nil {
		return err
	}
	d.svc.OnEvent(d.handleEvent)
	d.logger.Info("mdns advertising", "instance", info.InstanceName, "port", info.Port)
	return nil
}

// handleEvent refreshes the TXT records when the mode changes.
func (d *Daemon) handleEvent(event service.Event) {
	if event.Type != service.EventModeChanged {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.info == nil {
		return
	}
	// Events arrive on separate goroutines; read the current mode
	// rather than trusting event order.
	info := *d.info
	info.Mode = d.svc.Mode()
	if err := d.advertiser.Update(&info); err != nil {
		d.logger.Warn("mdns update failed", "err", err)
		return
	}
	d.info = &info
}

func (d *Daemon) instanceName() string {
	if d.cfg.MDNS.Instance != "" {
		return d.cfg.MDNS.Instance
	}
	name := "powersuspend"
	if host, err := os.Hostname(); err == nil && host != "" {
		host, _, _ = strings.Cut(host, ".")
		name += "-" + host
	}
	if len(name) > discovery.MaxInstanceNameLen {
		name = name[:discovery.MaxInstanceNameLen]
	}
	return name
}

func (d *Daemon) shutdown() {
	if d.advertiser != nil {
		d.mu.Lock()
		d.info = nil
		d.mu.Unlock()
		if err := d.advertiser.Stop(); err != nil {
			d.logger.Warn("mdns stop failed", "err", err)
		}
	}
	d.svc.Stop()
	d.closeJournal()
	d.logger.Info("power coordinator stopped", "instance", d.svc.InstanceID())
}

func (d *Daemon) closeJournal() {
	if d.journal == nil {
		return
	}
	if n := d.journal.Dropped(); n > 0 {
		d.logger.Warn("journal dropped events", "count", n)
	}
	if err := d.journal.Close(); err != nil {
		d.logger.Warn("journal close failed", "err", err)
	}
}
