package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and discard the stored credential",
	Long: `End the current session. The local credential store is wiped
first; the server is told afterwards on a best-effort basis, so logout
succeeds even when the backend is unreachable.`,
	RunE: runLogout,
}

func runLogout(cmd *cobra.Command, args []string) error {
	if !api.HasCredential() {
		fmt.Println("Not signed in.")
		return nil
	}

	authStore.Logout(context.Background())
	fmt.Println("Signed out.")
	return nil
}
