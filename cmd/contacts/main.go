// Command contacts parses contact lists offline and hands them to the
// campaign webhooks without going through the portal UI.
package main

import (
	"fmt"
	"os"
	"time"

	"autolynx-portal/internal/config"

	"github.com/spf13/cobra"
)

var (
	webhookURL string
	timeout    time.Duration
	sessionID  string
)

var rootCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Parse and submit AutoLynx call lists",
	Long: `Work with call lists from the command line.

Available subcommands:
  parse  - Parse pasted contacts and print them as a table or CSV
  submit - Parse contacts and send them to the chat webhook as a campaign
  upload - Send a CSV file to the CSV upload webhook`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&webhookURL, "webhook", "", "webhook URL (defaults to the value from the environment)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "request timeout (defaults to the configured timeout)")

	rootCmd.AddCommand(parseCmd, submitCmd, uploadCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the same environment the server does; only the webhook
// URLs and timeouts are used here.
func loadConfig() *config.Config {
	cfg := config.LoadConfig()
	if timeout > 0 {
		cfg.ChatTimeout = timeout
		cfg.UploadTimeout = timeout
	}
	return cfg
}

func pickURL(fallback string) (string, error) {
	if webhookURL != "" {
		return webhookURL, nil
	}
	if fallback == "" {
		return "", fmt.Errorf("no webhook URL: pass --webhook or set it in the environment")
	}
	return fallback, nil
}
