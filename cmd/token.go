package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/materials-catalog/internal/platform/ctxutil"
	"github.com/yungbote/materials-catalog/internal/services"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Development token helpers",
	}

	var (
		userID string
		role   string
		ttl    time.Duration
	)
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Mint a signed bearer token with JWT_SECRET_KEY",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, cfg, err := loadRuntime()
			if err != nil {
				return err
			}
			defer log.Sync()

			id := uuid.New()
			if userID != "" {
				if id, err = uuid.Parse(userID); err != nil {
					return fmt.Errorf("invalid --user: %w", err)
				}
			}
			tokens, err := services.NewTokenService(log, cfg.JWTSecretKey, cfg.JWTIssuer)
			if err != nil {
				return err
			}
			token, err := tokens.Issue(id, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	issue.Flags().StringVar(&userID, "user", "", "user id (random when empty)")
	issue.Flags().StringVar(&role, "role", ctxutil.RoleUser, "user or admin")
	issue.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	cmd.AddCommand(issue)
	return cmd
}
