package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/auth"
)

func newTokenCmd() *cobra.Command {
	var (
		subject string
		roles   []string
		issuer  string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for riskd, signed with JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret := os.Getenv("JWT_SECRET")
			if secret == "" {
				return errors.New("JWT_SECRET is not set")
			}

			svc, err := auth.NewJWTService(auth.JWTConfig{Secret: secret, Issuer: issuer, Expiration: ttl})
			if err != nil {
				return err
			}
			token, err := svc.GenerateToken(subject, roles)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "token subject")
	cmd.Flags().StringArrayVar(&roles, "role", []string{auth.RoleAnalyst}, "granted role (repeatable)")
	cmd.Flags().StringVar(&issuer, "issuer", "risk-engine", "token issuer; must match riskd")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
