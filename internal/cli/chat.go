package cli

import (
	"github.com/spf13/cobra"

	"github.com/danielwetzel/ragchat/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive chat UI",
	Long: `Open the interactive terminal UI. Works without an account in
guest mode; sign in from inside the UI (ctrl+l) to keep the transcript.

Logs go to the log file only while the UI is running.`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	return tui.Run(api, authStore, chatStore, guard, logger)
}
