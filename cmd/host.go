package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/pion/webrtc/v3"
	"github.com/spf13/cobra"

	"github.com/tomaslejdung/godesk/internal/ui"
	"github.com/tomaslejdung/godesk/pkg/control"
	"github.com/tomaslejdung/godesk/pkg/history"
	"github.com/tomaslejdung/godesk/pkg/rtc"
	"github.com/tomaslejdung/godesk/pkg/settings"
	"github.com/tomaslejdung/godesk/pkg/signal"
)

var (
	flagHostServer string
	flagHostSTUN   string
	flagHostTURN   string
	flagHostUser   string
	flagHostPass   string
	flagHostRelay  bool
	flagHostCode   string
)

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Share your screen",
	Long: `Create a session and wait for a client to connect. The session code
printed on screen is what the other side passes to "godesk join". You
will be asked before any screen data is sent.

Examples:
  godesk host
  godesk host --code 1234567890
  godesk host --server ws://relay.example.com/ws`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHost()
	},
}

func runHost() error {
	cfg, err := participantConfig(flagHostServer, flagHostSTUN, flagHostTURN, flagHostUser, flagHostPass, flagHostRelay)
	if err != nil {
		return err
	}

	code := flagHostCode
	if code == "" {
		code = signal.GenerateSessionCode()
	} else {
		code = signal.NormalizeSessionCode(code)
	}

	orch := control.New(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := orch.StartHost(ctx, code); err != nil {
		return err
	}
	defer orch.Stop()

	recordSession(code, "host", cfg.ServerURL)
	return ui.RunSession(orch, code)
}

// participantConfig merges saved settings with command-line overrides.
func participantConfig(server, stun, turn, turnUser, turnPass string, forceRelay bool) (control.Config, error) {
	saved, err := settings.Load()
	if err != nil {
		slog.Warn("could not load settings, using defaults", "error", err)
		saved = settings.DefaultSettings()
	}

	if server != "" {
		saved.ServerURL = server
	}
	if stun != "" {
		saved.STUNServer = stun
	}
	if turn != "" {
		saved.TURNServer = turn
	}
	if turnUser != "" {
		saved.TURNUser = turnUser
	}
	if turnPass != "" {
		saved.TURNPass = turnPass
	}
	if forceRelay {
		saved.ForceRelay = true
	}

	rtcCfg := rtc.Config{
		TURNServer: saved.TURNServer,
		TURNUser:   saved.TURNUser,
		TURNPass:   saved.TURNPass,
		ForceRelay: saved.ForceRelay,
	}
	if saved.STUNServer != "" {
		rtcCfg.ICEServers = []webrtc.ICEServer{{URLs: []string{saved.STUNServer}}}
	}

	return control.Config{
		ServerURL: saved.ServerURL,
		RTC:       rtcCfg,
	}, nil
}

// recordSession is best-effort; history never blocks a connection.
func recordSession(sessionID, role, serverURL string) {
	dir, err := history.DefaultDir()
	if err != nil {
		slog.Debug("history disabled", "error", err)
		return
	}
	store, err := history.Open(dir)
	if err != nil {
		slog.Debug("history disabled", "error", err)
		return
	}
	defer store.Close()

	if err := store.Record(history.Entry{
		SessionID: sessionID,
		Role:      role,
		ServerURL: serverURL,
	}); err != nil {
		slog.Debug("history record failed", "error", err)
	}
}

func init() {
	rootCmd.AddCommand(hostCmd)

	hostCmd.Flags().StringVar(&flagHostServer, "server", "", "Relay server websocket URL")
	hostCmd.Flags().StringVarP(&flagHostSTUN, "stun", "s", "", "Custom STUN server")
	hostCmd.Flags().StringVarP(&flagHostTURN, "turn", "t", "", "Custom TURN server")
	hostCmd.Flags().StringVar(&flagHostUser, "turn-user", "", "TURN username")
	hostCmd.Flags().StringVar(&flagHostPass, "turn-pass", "", "TURN password")
	hostCmd.Flags().BoolVarP(&flagHostRelay, "relay", "r", false, "Force relay mode")
	hostCmd.Flags().StringVar(&flagHostCode, "code", "", "Use a specific session code")
}
