package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

// healthCmd checks a running rfqd server
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check rfqd server health",
	Long: `Check the health and parser mode of a running rfqd server.

Examples:
  rfq health
  rfq health --server http://localhost:9191 -o json`,
	RunE: runHealth,
}

// StatusResponse matches internal/http StatusResponse.
type StatusResponse struct {
	Status   string            `json:"status"`
	Version  string            `json:"version"`
	Mode     string            `json:"mode"`
	Uptime   string            `json:"uptime"`
	Services map[string]string `json:"services,omitempty"`
}

func runHealth(cmd *cobra.Command, _ []string) error {
	if err := checkFormat(outputFormat); err != nil {
		return err
	}

	client := &http.Client{Timeout: 5 * time.Second}
	url := fmt.Sprintf("%s/api/v1/status", serverURL)

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("server returned status %d (failed to read response body: %w)", resp.StatusCode, readErr)
		}
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}

	var status StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return render(cmd.OutOrStdout(), outputFormat, status, func(w io.Writer) {
		statusStyle := bandStyles["high"]
		if status.Status != "ok" {
			statusStyle = bandStyles["low"]
		}
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(pad("Server Status", labelWidth)), statusStyle.Render(status.Status))
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(pad("Server URL", labelWidth)), valueStyle.Render(serverURL))
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(pad("Version", labelWidth)), valueStyle.Render(status.Version))
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(pad("Mode", labelWidth)), valueStyle.Render(status.Mode))
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(pad("Uptime", labelWidth)), valueStyle.Render(status.Uptime))
	})
}
