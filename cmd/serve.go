package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tomaslejdung/godesk/pkg/signal"
)

var flagServePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the relay server",
	Long: `Run the signaling relay. Participants connect over websocket at /ws;
/api/sessions and /healthz expose a read-only view of active sessions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := signal.NewRegistry()
		server := signal.NewServer(registry)

		addr := fmt.Sprintf(":%d", flagServePort)
		slog.Info("relay server listening", "addr", addr)
		return server.Start(addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&flagServePort, "port", "p", 8080, "Port to listen on")
}
