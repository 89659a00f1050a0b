package main

import (
	"fmt"

	"stockhub/internal/repository"
	"stockhub/internal/service"

	"github.com/spf13/cobra"
)

var tokenEmail string

// stockctl token --email admin@stockhub.local
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a bearer token for an existing user (development only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := boot()
		if err != nil {
			return err
		}
		if cfg.IsProduction() {
			return fmt.Errorf("token minting is disabled in production")
		}
		user, err := repository.NewUserRepository(db).FindByEmail(cmd.Context(), tokenEmail)
		if err != nil {
			return err
		}
		token, err := service.NewAuthService(repository.NewUserRepository(db), cfg).IssueToken(user)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "admin@stockhub.local", "email of the user to impersonate")
}
