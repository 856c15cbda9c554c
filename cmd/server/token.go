package main

import (
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"hrpay/internal/domain/auth"
	"hrpay/internal/platform/config"
)

// tokenCommand mints a bearer token signed with JWT_SECRET.
func tokenCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Generates a JWT for the given user and role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, _ := cmd.Flags().GetString("user")
			role, _ := cmd.Flags().GetString("role")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not configured")
			}
			if !auth.KnownRole(role) {
				return errors.Errorf("unknown role %q", role)
			}
			signed, err := auth.GenerateToken(cfg.JWTSecret, auth.Claims{UserID: user, RoleName: role}, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), signed)
			return err
		},
	}

	cmd.Flags().String("user", "", "User ID placed in the token")
	cmd.Flags().String("role", auth.RoleHR, "Role name (Employee, Manager, HR, SystemAdmin)")
	cmd.Flags().Duration("ttl", 24*time.Hour, "Token TTL (e.g., 30m, 8h)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
