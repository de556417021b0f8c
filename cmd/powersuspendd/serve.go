package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/powersuspend/powersuspend-go/cmd/powersuspendd/interactive"
	"github.com/powersuspend/powersuspend-go/internal/config"
	"github.com/powersuspend/powersuspend-go/internal/daemon"
)

var (
	serveConfigPath  string
	serveFlags       config.Flags
	serveMDNS        bool
	serveInteractive bool
	serveNoHTTP      bool
)

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveConfigPath, "config", "", "Configuration file (default ~/.powersuspend/config.yaml if present)")
	f.StringVar(&serveFlags.Mode, "mode", "", "Suspend mode: autosleep, userspace, panel, hybrid or 0-3")
	f.StringVar(&serveFlags.Listen, "listen", "", "HTTP API listen address")
	f.BoolVar(&serveNoHTTP, "no-http", false, "Disable the HTTP API and mDNS")
	f.BoolVar(&serveMDNS, "mdns", false, "Advertise the API via mDNS")
	f.StringVar(&serveFlags.Instance, "instance", "", "mDNS instance name")
	f.StringVar(&serveFlags.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	f.StringVar(&serveFlags.LogFormat, "log-format", "", "Log format: text or json")
	f.StringVar(&serveFlags.Journal, "journal", "", "Event journal file (CBOR)")
	f.StringVar(&serveFlags.SlowHandler, "slow-handler", "", "Warn when a callback runs longer than this duration")
	f.BoolVar(&serveInteractive, "interactive", false, "Start the operator console")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the power coordinator",
	Long: `Runs the coordinator with its control surface exposed over HTTP.

Configuration is layered: built-in defaults, the YAML config file,
POWERSUSPEND_* environment variables, then flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := serveFlags
		if cmd.Flags().Changed("mdns") {
			flags.MDNS = &serveMDNS
		}

		cfg, err := config.Load(serveConfigPath, flags)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		if serveNoHTTP {
			cfg.HTTP.Listen = ""
			cfg.MDNS.Enabled = false
		}

		return runServe(cmd.Context(), cfg, serveInteractive)
	},
}

func runServe(parent context.Context, cfg *config.Config, withConsole bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var logOut io.Writer = os.Stderr
	var shell *interactive.Shell
	if withConsole {
		var err error
		shell, err = interactive.New()
		if err != nil {
			return err
		}
		// Log lines go through readline so they do not garble the prompt.
		logOut = shell.Stdout()
	}

	d, err := daemon.New(daemon.Options{Config: cfg, Logger: cfg.NewLogger(logOut)})
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	if shell != nil {
		shell.Bind(d.Service(), d.Surface())
		go shell.Run(ctx, cancel)
	}

	return d.Run(ctx)
}
