package main

import (
	"fmt"

	"stockhub/internal/dto"
	"stockhub/internal/model"
	"stockhub/internal/repository"
	"stockhub/internal/service"

	"github.com/spf13/cobra"
)

var userFlags dto.CreateUserRequest

// stockctl user --email ops@example.com --name Ops --password ... --role ADMIN
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Create a user, or reset the password and role of an existing one",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := boot()
		if err != nil {
			return err
		}
		user, err := service.NewAuthService(repository.NewUserRepository(db), cfg).CreateUser(cmd.Context(), userFlags)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", user.ID, user.Email, user.Role)
		return nil
	},
}

func init() {
	f := userCmd.Flags()
	f.StringVar(&userFlags.Email, "email", "", "login email")
	f.StringVar(&userFlags.Name, "name", "", "display name")
	f.StringVar(&userFlags.Password, "password", "", "password, at least 8 characters")
	f.StringVar(&userFlags.Role, "role", model.RoleStaff, "ADMIN or STAFF_GUDANG")
	_ = userCmd.MarkFlagRequired("email")
	_ = userCmd.MarkFlagRequired("name")
	_ = userCmd.MarkFlagRequired("password")
}
