package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/powersuspend/powersuspend-go/pkg/powerstate"
	"github.com/powersuspend/powersuspend-go/pkg/transport"
)

var (
	flagJSON      bool
	flagReconnect bool
)

func init() {
	watchCmd.Flags().BoolVar(&flagJSON, "json", false, "Print notifications as JSON lines")
	watchCmd.Flags().BoolVar(&flagReconnect, "reconnect", false, "Reconnect with backoff when the stream drops")
	rootCmd.AddCommand(getCmd, setCmd, triggerCmd, handlersCmd, watchCmd)
}

var getCmd = &cobra.Command{
	Use:   "get [endpoint]",
	Short: "Read a control endpoint, or list all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := transport.NewClient(serverURL(cmd))
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			value, err := client.Read(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, value)
			return nil
		}

		attrs, err := client.Attributes(cmd.Context())
		if err != nil {
			return err
		}
		for _, a := range attrs {
			access := "ro"
			if a.Writable {
				access = "rw"
			}
			fmt.Fprintf(out, "%-8s %s  %s\n", a.Name, access, a.Value)
		}
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set <endpoint> <value>",
	Short: "Write a control endpoint",
	Long: `Writes a value to a control endpoint.

  state  0 or 1, accepted only in userspace mode
  mode   0=autosleep 1=userspace 2=panel 3=hybrid

Out-of-range values are ignored by the coordinator.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transport.NewClient(serverURL(cmd)).Write(cmd.Context(), args[0], args[1])
	},
}

var triggerCmd = &cobra.Command{
	Use:       "trigger <autosleep|panel> <0|1>",
	Short:     "Invoke a hardware hook",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"autosleep", "panel"},
	RunE: func(cmd *cobra.Command, args []string) error {
		trigger, err := powerstate.ParseTrigger(args[0])
		if err != nil {
			return err
		}
		state, err := powerstate.ParseState(args[1])
		if err != nil {
			return err
		}

		ok, err := transport.NewClient(serverURL(cmd)).Trigger(cmd.Context(), trigger, state)
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintf(cmd.OutOrStdout(), "%s hook accepted\n", trigger)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s hook ignored by current mode\n", trigger)
		}
		return nil
	},
}

var handlersCmd = &cobra.Command{
	Use:   "handlers",
	Short: "List registered handlers in registration order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		handlers, err := transport.NewClient(serverURL(cmd)).Handlers(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(handlers) == 0 {
			fmt.Fprintln(out, "No handlers registered")
			return nil
		}
		for i, h := range handlers {
			fmt.Fprintf(out, "%2d. %-24s %s suspend=%t resume=%t\n", i+1, h.Name, h.ID, h.HasSuspend, h.HasResume)
		}
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream dispatch notifications until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		client := transport.NewClient(serverURL(cmd))
		show := func(n transport.Notification) { printNotification(out, n, flagJSON) }

		var err error
		if flagReconnect {
			err = client.WatchReconnect(ctx, show, func(lost error, delay time.Duration) {
				fmt.Fprintf(cmd.ErrOrStderr(), "stream lost (%v), retrying in %s\n", lost, delay.Round(time.Millisecond))
			})
		} else {
			err = client.Watch(ctx, show)
		}
		if ctx.Err() != nil {
			return nil
		}
		return err
	},
}

func printNotification(w io.Writer, n transport.Notification, asJSON bool) {
	if asJSON {
		_ = json.NewEncoder(w).Encode(n)
		return
	}
	fmt.Fprintf(w, "%s gen=%d %-7s trigger=%s\n",
		n.Timestamp.Format("15:04:05.000"), n.Generation, n.Direction, n.Trigger)
}

func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
