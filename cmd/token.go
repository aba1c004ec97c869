package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/vpp/api"
)

var tokenFlags struct {
	subject string
	secret  string
	ttl     time.Duration
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign a bearer token for the HTTP API",
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenFlags.subject, "subject", "operator", "token subject")
	tokenCmd.Flags().StringVar(&tokenFlags.secret, "secret", "", "signing secret (defaults to api.jwt_secret)")
	tokenCmd.Flags().DurationVar(&tokenFlags.ttl, "ttl", 24*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	secret := tokenFlags.secret
	if secret == "" {
		secret = cfg.API.JWTSecret
	}
	if secret == "" {
		return errors.New("no signing secret: set api.jwt_secret or --secret")
	}
	tok, err := api.IssueToken(secret, tokenFlags.subject, tokenFlags.ttl, time.Now())
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
	return err
}
