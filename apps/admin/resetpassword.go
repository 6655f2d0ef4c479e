package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/sprakportal/backend/core"
	"github.com/sprakportal/backend/core/user"
	sqlxrepos "github.com/sprakportal/backend/storage/database/sqlx"
)

func newResetPasswordCmd(conf *core.Config) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "resetpassword",
		Short: "Reset a user's password",
		RunE: func(cmd *cobra.Command, args []string) error {
			pwd, err := promptPassword()
			if err != nil {
				return err
			}

			db, err := openDB(conf)
			if err != nil {
				return err
			}
			defer db.Close()

			return resetPassword(context.Background(), sqlxrepos.NewUserRepository(db), email, pwd)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "The user's email. The password will be prompted next.")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func resetPassword(ctx context.Context, repo user.Repository, email, pwd string) error {
	usr, err := repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = repo.UpdateUser(ctx, usr, nil)
	return err
}
