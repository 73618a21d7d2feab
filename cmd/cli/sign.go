package main

import (
	"fmt"
	"io"
	"os"

	"github.com/amirasaad/payoutrouter/pkg/config"
	"github.com/amirasaad/payoutrouter/pkg/iso20022"
	"github.com/spf13/cobra"
)

func signCmd() *cobra.Command {
	var secret string
	cmd := &cobra.Command{
		Use:   "sign <file|->",
		Short: "Print the webhook signature of a payload",
		Long: `Print the hex HMAC-SHA256 signature the receiver expects in the
signature header. Use - to read the payload from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("no secret: set WEBHOOK_SHARED_SECRET or pass --secret")
			}
			payload, err := readPayload(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), iso20022.Sign([]byte(secret), payload)) //nolint:errcheck
			return nil
		},
	}
	cmd.Flags().StringVarP(&secret, "secret", "s",
		config.GetEnv("WEBHOOK_SHARED_SECRET", config.GetEnv("DWINSHAREDSECRET", "")), "Shared webhook secret")
	return cmd
}

func readPayload(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return payload, nil
}
