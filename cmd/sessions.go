package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/tomaslejdung/godesk/pkg/signal"
)

var flagSessionsServer string

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List active sessions on a relay server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listSessions(flagSessionsServer)
	},
}

func listSessions(server string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(server + "/api/sessions")
	if err != nil {
		return fmt.Errorf("query relay server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("relay server returned %s", resp.Status)
	}

	var infos []signal.SessionInfo
	if err := json.NewDecoder(resp.Body).Decode(&infos); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("no active sessions")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Session", "Clients", "Created"})
	for _, info := range infos {
		t.AppendRow(table.Row{
			info.ID,
			info.Clients,
			info.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.Flags().StringVar(&flagSessionsServer, "server", "http://localhost:8080", "Relay server base URL")
}
