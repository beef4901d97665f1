package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielwetzel/ragchat/internal/chat"
)

var (
	askFile string
	askSave bool
)

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Send one message and print the answer",
	Long: `Send a single message to the chat service and print the answer.

Attach a file with --file to have it classified alongside the message.
With --save the exchange is appended to a new conversation; this
requires a signed-in session.

Examples:
  ragchat ask "What does the maintenance contract cover?"
  ragchat ask "What is this part?" --file part.jpg
  ragchat ask "Summarize my options" --save`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askFile, "file", "f", "", "attach a file to the prompt")
	askCmd.Flags().BoolVar(&askSave, "save", false, "save the exchange to a new conversation")
}

func runAsk(cmd *cobra.Command, args []string) error {
	message := args[0]
	ctx := context.Background()

	if askSave {
		if !api.HasCredential() {
			return fmt.Errorf("--save requires a signed-in session, run: ragchat login <email>")
		}
		if chatStore.CreateConversation(ctx, chat.DeriveTitle(message)) == nil {
			return fmt.Errorf("create conversation failed")
		}
		result := chatStore.SendMessage(ctx, message)
		fmt.Println(result.Reply)
		printStatsIfVerbose()
		if result.Outcome == chat.SendFailed {
			return fmt.Errorf("answer shown but not saved")
		}
		return nil
	}

	res, err := api.Prompt(ctx, message, askFile)
	if err != nil {
		return fmt.Errorf("prompt: %w", err)
	}

	switch {
	case res.Prediction != "":
		fmt.Printf("Identified as: %s", res.Prediction)
		if res.Probability > 0 {
			fmt.Printf(" (%.0f%%)", res.Probability*100)
		}
		fmt.Println()
	case res.Answer != "":
		fmt.Println(res.Answer)
	default:
		fmt.Println("No answer.")
	}

	printStatsIfVerbose()
	return nil
}

// printStatsIfVerbose dumps per-endpoint request timings collected
// during this invocation.
func printStatsIfVerbose() {
	if !verbose {
		return
	}
	snap := api.Stats()
	fmt.Printf("\nRequest stats (%.1fs uptime):\n", snap.UptimeSeconds)
	for endpoint, s := range snap.Requests {
		fmt.Printf("  %-30s n=%d avg=%.0fms min=%dms max=%dms\n",
			endpoint, s.Count, s.AvgTimeMs, s.MinTimeMs, s.MaxTimeMs)
	}
}
