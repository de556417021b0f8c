package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/powersuspend/powersuspend-go/pkg/discovery"
)

var (
	discoverTimeout   time.Duration
	discoverInterface string
)

func init() {
	discoverCmd.Flags().DurationVar(&discoverTimeout, "timeout", discovery.BrowseTimeout, "How long to browse")
	discoverCmd.Flags().StringVar(&discoverInterface, "interface", "", "Network interface (default all)")
	rootCmd.AddCommand(discoverCmd)
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Browse the local network for coordinators",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := discovery.DefaultBrowserConfig()
		cfg.Interface = discoverInterface
		browser, err := discovery.NewMDNSBrowser(cfg)
		if err != nil {
			return err
		}
		defer browser.Stop()

		ctx, cancel := context.WithTimeout(contextOrBackground(cmd), discoverTimeout)
		defer cancel()

		found, err := browser.Browse(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		n := 0
		for inst := range found {
			n++
			mode := "-"
			if inst.HasMode {
				mode = inst.Mode.String()
			}
			fmt.Fprintf(out, "%-32s %s:%d%s  version=%s mode=%s\n",
				inst.InstanceName, inst.Host, inst.Port, inst.APIPath, inst.Version, mode)
			if len(inst.Addresses) > 0 {
				fmt.Fprintf(out, "  addresses: %s\n", strings.Join(inst.Addresses, ", "))
			}
		}
		if n == 0 {
			fmt.Fprintln(out, "No coordinators found")
		}
		return nil
	},
}
