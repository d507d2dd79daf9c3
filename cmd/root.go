// Package cmd wires the godesk CLI.
package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/tomaslejdung/godesk/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "godesk",
	Short: "Peer-to-peer screen sharing and remote control",
	Long: `godesk shares a screen between two peers over WebRTC and forwards
mouse and keyboard input back to the host. A small relay server brokers
sessions and carries signaling; input rides a low-latency unreliable
data channel once the peers connect directly.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init()
	},
}

// Execute runs the CLI. Called once from main.
func Execute() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		os.Exit(0)
	}()

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
