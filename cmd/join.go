package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomaslejdung/godesk/internal/ui"
	"github.com/tomaslejdung/godesk/pkg/control"
	"github.com/tomaslejdung/godesk/pkg/signal"
)

var (
	flagJoinServer string
	flagJoinSTUN   string
	flagJoinTURN   string
	flagJoinUser   string
	flagJoinPass   string
	flagJoinRelay  bool
)

var joinCmd = &cobra.Command{
	Use:     "join [session-code]",
	Aliases: []string{"j"},
	Short:   "Connect to a shared screen",
	Long: `Join a session created by "godesk host". Pass the session code as an
argument or enter it at the prompt. The host must approve before the
stream starts.

Examples:
  godesk join 1234567890
  godesk join --server ws://relay.example.com/ws`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var code string
		if len(args) == 1 {
			code = signal.NormalizeSessionCode(args[0])
			if !signal.ValidateSessionCode(code) {
				return fmt.Errorf("invalid session code %q: codes are 10 digits", args[0])
			}
		} else {
			var err error
			code, err = ui.PromptSessionCode()
			if err != nil {
				return err
			}
		}
		return runJoin(code)
	},
}

func runJoin(code string) error {
	cfg, err := participantConfig(flagJoinServer, flagJoinSTUN, flagJoinTURN, flagJoinUser, flagJoinPass, flagJoinRelay)
	if err != nil {
		return err
	}

	orch := control.New(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := orch.StartClient(ctx, code); err != nil {
		return err
	}
	defer orch.Stop()

	recordSession(code, "client", cfg.ServerURL)
	return ui.RunSession(orch, code)
}

func init() {
	rootCmd.AddCommand(joinCmd)

	joinCmd.Flags().StringVar(&flagJoinServer, "server", "", "Relay server websocket URL")
	joinCmd.Flags().StringVarP(&flagJoinSTUN, "stun", "s", "", "Custom STUN server")
	joinCmd.Flags().StringVarP(&flagJoinTURN, "turn", "t", "", "Custom TURN server")
	joinCmd.Flags().StringVar(&flagJoinUser, "turn-user", "", "TURN username")
	joinCmd.Flags().StringVar(&flagJoinPass, "turn-pass", "", "TURN password")
	joinCmd.Flags().BoolVarP(&flagJoinRelay, "relay", "r", false, "Force relay mode")
}
