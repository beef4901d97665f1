package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE:  runWhoami,
}

func runWhoami(cmd *cobra.Command, args []string) error {
	if !api.HasCredential() {
		fmt.Println("Not signed in (guest mode).")
		return nil
	}

	if !authStore.GetCurrentUser(context.Background()) {
		return fmt.Errorf("session expired, sign in again")
	}

	user := authStore.Snapshot().User
	fmt.Printf("Signed in as %s\n", user.Email)
	if verbose {
		fmt.Printf("  ID:      %d\n", user.ID)
		fmt.Printf("  Active:  %v\n", user.IsActive)
		fmt.Printf("  Created: %s\n", user.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
