package main

import (
	"fmt"
	"io"
	"os"

	"autolynx-portal/internal/contacts"

	"github.com/spf13/cobra"
)

var (
	parseFormat string
	parseStrict bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a contact list and print the result",
	Long: `Parse contacts from a file (or stdin) using the same rules as the
portal and print what would be submitted.

Each line is "Name, Phone" or "Name, Phone, Business". Invalid lines
are dropped and counted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVar(&parseFormat, "format", "text", "output format: text or csv")
	parseCmd.Flags().BoolVar(&parseStrict, "strict", false, "exit non-zero when any line is rejected")
}

func runParse(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	list, report := contacts.ParseWithReport(text)
	out := cmd.OutOrStdout()

	switch parseFormat {
	case "csv":
		if err := contacts.WriteCSV(out, list); err != nil {
			return err
		}
	case "text":
		fmt.Fprintln(out, contacts.Format(list))
	default:
		return fmt.Errorf("unknown format %q (want text or csv)", parseFormat)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%d lines, %d valid, %d rejected", report.Lines, report.Valid, report.Rejected)
	if report.Truncated {
		fmt.Fprintf(cmd.ErrOrStderr(), ", truncated to %d", contacts.MaxContacts)
	}
	fmt.Fprintln(cmd.ErrOrStderr())

	if parseStrict && report.Rejected > 0 {
		return fmt.Errorf("%d lines rejected", report.Rejected)
	}
	return nil
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read contacts: %w", err)
	}
	return string(data), nil
}
