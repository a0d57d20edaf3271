package main

import (
	"errors"
	"fmt"

	"autolynx-portal/internal/contacts"
	"autolynx-portal/internal/webhook"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var submitLegacy bool

var submitCmd = &cobra.Command{
	Use:   "submit [file]",
	Short: "Parse contacts and start a campaign through the chat webhook",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&sessionID, "session", "", "chat session id (a new one is generated when empty)")
	submitCmd.Flags().BoolVar(&submitLegacy, "legacy", false, "send the list as contactsRaw text instead of structured records")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	list := contacts.Parse(text)
	if len(list) == 0 {
		return errors.New("no valid contacts found")
	}

	cfg := loadConfig()
	url, err := pickURL(cfg.ChatWebhookURL)
	if err != nil {
		return err
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	client := webhook.NewClient(webhook.Options{ChatTimeout: cfg.ChatTimeout, UploadTimeout: cfg.UploadTimeout})

	var res *webhook.Result
	if submitLegacy {
		res, err = client.SendContactsRaw(cmd.Context(), url, sessionID, contacts.Format(list))
	} else {
		res, err = client.SubmitContacts(cmd.Context(), url, sessionID, list)
	}
	if webhook.IsTimeout(err) {
		fmt.Fprintf(cmd.OutOrStdout(), "Submitted %d contacts; the webhook is still processing (session %s).\n", len(list), sessionID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("submit contacts: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Submitted %d contacts (session %s).\n%s\n", len(list), sessionID, res.Message)
	return nil
}
