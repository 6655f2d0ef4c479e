package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sprakportal/backend/core"
	"github.com/sprakportal/backend/storage/database"
)

var readPasswordFunc = term.ReadPassword // mockable

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	conf := core.NewConfig()

	root := &cobra.Command{
		Use:           "admin",
		Short:         "Språkportalen administration commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(conf),
		newAddUserCmd(conf),
		newResetPasswordCmd(conf),
		newSeedCmd(conf),
	)
	return root
}

// openDB connects to the existing application database. Commands that may
// run against a fresh instance go through migrate first.
func openDB(conf *core.Config) (*sqlx.DB, error) {
	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func promptPassword() (string, error) {
	fmt.Print("Enter password: ")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		return "", fmt.Errorf("password cannot be empty")
	}
	return string(pwd), nil
}
