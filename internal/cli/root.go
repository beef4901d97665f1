// Package cli provides the command-line interface for ragchat.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielwetzel/ragchat/internal/chat"
	"github.com/danielwetzel/ragchat/internal/client"
	"github.com/danielwetzel/ragchat/internal/config"
	"github.com/danielwetzel/ragchat/internal/router"
	"github.com/danielwetzel/ragchat/internal/session"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Wired once in PersistentPreRunE, shared by all commands.
	cfg       config.Config
	logger    *slog.Logger
	closeLog  func() error
	api       *client.Client
	authStore *session.Store
	chatStore *chat.Store
	guard     *router.Guard
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ragchat",
	Short: "Terminal client for the RAG chat service",
	Long: `Ragchat is a terminal client for a retrieval-augmented chat service.

Chat as a guest without an account, or sign in to keep your conversation
history on the server. Sessions survive restarts through an on-disk
credential store and are renewed transparently when they expire.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Nothing to wire for version and help
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()

		level := cfg.LogLevel
		if verbose {
			level = slog.LevelDebug
		}
		// The interactive UI owns the terminal; keep logs file-only there.
		quiet := cmd.Name() == "chat"
		logger, closeLog = config.SetupLogger(cfg.LogFile, level, quiet)

		jar, err := client.NewJar(cfg.CookieFile)
		if err != nil {
			return fmt.Errorf("open credential store: %w", err)
		}

		api, err = client.New(cfg.BackendURL, jar, cfg.Timeout, logger)
		if err != nil {
			return fmt.Errorf("create API client: %w", err)
		}

		authStore = session.New(api, logger)
		chatStore = chat.New(api, logger)
		guard = router.NewGuard(cfg.PrivatePrefixes, cfg.LoginRoute, api, logger)

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closeLog != nil {
			if err := closeLog(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(passwdCmd)
	rootCmd.AddCommand(conversationsCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
}
