package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"convs"},
	Short:   "List, create, and show saved conversations",
	Long: `Work with server-side conversations. Requires a signed-in session;
guest transcripts are never stored and have nothing to list.

Subcommands:
  list        List conversations (default)
  new         Create a conversation
  show        Print a conversation's messages

Examples:
  ragchat conversations
  ragchat conversations new "Kitchen renovation"
  ragchat conversations show 42`,
	RunE: runConversationsList,
}

var conversationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations",
	RunE:  runConversationsList,
}

var conversationsNewCmd = &cobra.Command{
	Use:   "new <title>",
	Short: "Create a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversationsNew,
}

var conversationsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a conversation's messages",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversationsShow,
}

func init() {
	conversationsCmd.AddCommand(conversationsListCmd)
	conversationsCmd.AddCommand(conversationsNewCmd)
	conversationsCmd.AddCommand(conversationsShowCmd)
}

func runConversationsList(cmd *cobra.Command, args []string) error {
	if !api.HasCredential() {
		return fmt.Errorf("not signed in, run: ragchat login <email>")
	}

	ctx := context.Background()
	if !chatStore.LoadConversations(ctx) {
		return fmt.Errorf("load conversations failed")
	}

	conversations := chatStore.Snapshot().Conversations
	if len(conversations) == 0 {
		fmt.Println("No conversations yet.")
		return nil
	}

	fmt.Printf("Conversations (%d):\n\n", len(conversations))
	for _, c := range conversations {
		fmt.Printf("- [%d] %s (updated %s)\n", c.ID, c.Title, c.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runConversationsNew(cmd *cobra.Command, args []string) error {
	if !api.HasCredential() {
		return fmt.Errorf("not signed in, run: ragchat login <email>")
	}

	conversation := chatStore.CreateConversation(context.Background(), args[0])
	if conversation == nil {
		return fmt.Errorf("create conversation failed")
	}

	fmt.Printf("Created conversation [%d] %s\n", conversation.ID, conversation.Title)
	return nil
}

func runConversationsShow(cmd *cobra.Command, args []string) error {
	if !api.HasCredential() {
		return fmt.Errorf("not signed in, run: ragchat login <email>")
	}

	var id int64
	if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
		return fmt.Errorf("invalid conversation id %q", args[0])
	}

	ctx := context.Background()
	messages, err := api.ListMessages(ctx, id)
	if err != nil {
		return fmt.Errorf("load messages: %w", err)
	}

	if len(messages) == 0 {
		fmt.Println("No messages in this conversation.")
		return nil
	}

	for _, m := range messages {
		who := "bot"
		if m.IsUser {
			who = "you"
		}
		fmt.Printf("%s  %s: %s\n", m.CreatedAt.Format("15:04"), who, m.Content)
	}
	return nil
}
