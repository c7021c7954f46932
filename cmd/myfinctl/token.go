package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fanzirfan/MyFinance/internal/auth"
)

// newTokenCmd mints a bearer token, for local development and for the
// validate smoke test.
func newTokenCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API bearer token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := ownerID()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return errors.New("AUTH_JWT_SECRET is not set")
			}
			token, err := auth.Sign([]byte(cfg.JWTSecret), uid, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	addOwnerFlag(cmd)
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	return cmd
}
