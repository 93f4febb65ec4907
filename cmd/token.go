package main

import (
	"fmt"

	"court-booking/internal/domain/user"
	"court-booking/internal/pkg/config"
	"court-booking/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// newTokenCmd mints a bearer token for local testing; production tokens
// come from the session service.
func newTokenCmd() *cobra.Command {
	var (
		userID string
		role   string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			id := uuid.New()
			if userID != "" {
				if id, err = uuid.Parse(userID); err != nil {
					return fmt.Errorf("invalid --user: %w", err)
				}
			}
			r, err := user.NewRole(role)
			if err != nil {
				return fmt.Errorf("invalid --role %q: %w", role, err)
			}

			token, err := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Duration).GenerateToken(id, r)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id (random when empty)")
	cmd.Flags().StringVar(&role, "role", string(user.RoleMember), "member or admin")
	return cmd
}
