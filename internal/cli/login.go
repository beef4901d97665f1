package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in and store the session credential",
	Long: `Sign in with an existing account. The password is read from the
terminal without echo.

On success the session credential is written to the on-disk credential
store and reused by every following command until logout or expiry.

Examples:
  ragchat login alice@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	email := args[0]

	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	if !authStore.Login(context.Background(), email, password) {
		return fmt.Errorf("login failed for %s", email)
	}

	snap := authStore.Snapshot()
	fmt.Printf("Signed in as %s\n", snap.User.Email)
	return nil
}
