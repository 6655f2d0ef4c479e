package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sprakportal/backend/core"
	"github.com/sprakportal/backend/core/user"
	sqlxrepos "github.com/sprakportal/backend/storage/database/sqlx"
)

func newAddUserCmd(conf *core.Config) *cobra.Command {
	var (
		name    string
		email   string
		level   string
		isAdmin bool
	)

	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create an account, or reactivate and update an existing one",
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

			return addUser(context.Background(), sqlxrepos.NewUserRepository(db), name, email, level, pwd, isAdmin)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "The user's full name")
	cmd.Flags().StringVar(&email, "email", "", "The user's email. The password will be prompted next.")
	cmd.Flags().StringVar(&level, "level", "", "CEFR study level for students (A1..C2)")
	cmd.Flags().BoolVar(&isAdmin, "admin", false, "Grant admin access")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// addUser updates or creates a user.User.
func addUser(ctx context.Context, repo user.Repository, name, email, level, pwd string, isAdmin bool) error {
	email = core.CleanString(email, true /* lower */)
	if level != "" && !core.IsCEFRLevel(level) {
		return errors.Errorf("invalid CEFR level %q", level)
	}

	role := user.RoleStudent
	if isAdmin {
		role = user.RoleAdmin
	}

	now := time.Now().UTC()
	usr, err := repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Name:      core.CleanString(name),
			Email:     email,
			Role:      role,
			Level:     level,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err = repo.CreateUser(ctx, usr)
		return err
	}

	usr.Name = core.CleanString(name)
	usr.Role = role
	usr.Level = level
	usr.UpdatedAt = now
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	active := true
	_, err = repo.UpdateUser(ctx, usr, &active)
	return err
}
