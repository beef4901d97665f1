package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register <email>",
	Short: "Create a new account",
	Long: `Create a new account. The password is read from the terminal
without echo and must be entered twice.

Registration does not sign you in; run "ragchat login" afterwards.

Examples:
  ragchat register alice@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runRegister,
}

func runRegister(cmd *cobra.Command, args []string) error {
	email := args[0]

	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	if !authStore.Register(context.Background(), email, password, confirm) {
		return fmt.Errorf("registration failed for %s", email)
	}

	fmt.Printf("Account created for %s. Sign in with: ragchat login %s\n", email, email)
	return nil
}
