package main

import (
	"fmt"
	"os"
	"path/filepath"

	"autolynx-portal/internal/webhook"

	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file.csv>",
	Short: "Send a CSV file to the upload webhook",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	url, err := pickURL(cfg.CSVUploadWebhookURL)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	client := webhook.NewClient(webhook.Options{ChatTimeout: cfg.ChatTimeout, UploadTimeout: cfg.UploadTimeout})
	res, err := client.UploadCSV(cmd.Context(), url, filepath.Base(args[0]), f)
	if webhook.IsTimeout(err) {
		fmt.Fprintln(cmd.OutOrStdout(), "Upload sent; the webhook is still processing it.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("upload %s: %w", args[0], err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Message)
	return nil
}
