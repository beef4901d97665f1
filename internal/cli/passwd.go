package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielwetzel/ragchat/internal/client"
	"github.com/danielwetzel/ragchat/internal/router"
)

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change the account password",
	Long: `Change the password of the signed-in account. All three values
are read from the terminal without echo.`,
	RunE: runPasswd,
}

func runPasswd(cmd *cobra.Command, args []string) error {
	// Same gate the interactive settings view sits behind.
	if _, redirected := guard.Resolve(router.RouteChangePassword); redirected {
		return fmt.Errorf("not signed in, run: ragchat login <email>")
	}

	old, err := promptPassword("Current password: ")
	if err != nil {
		return err
	}
	next, err := promptPassword("New password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm new password: ")
	if err != nil {
		return err
	}
	if next != confirm {
		return fmt.Errorf("new passwords do not match")
	}

	if err := api.UpdatePassword(context.Background(), old, next, confirm); err != nil {
		if client.IsUnauthorized(err) {
			return fmt.Errorf("current password is wrong")
		}
		return fmt.Errorf("change password: %w", err)
	}

	fmt.Println("Password updated.")
	return nil
}
