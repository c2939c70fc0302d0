package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &clientOptions{}

	root := &cobra.Command{
		Use:   "chatctl",
		Short: "Command-line client for the ChefGPT chat API",
		Long: `chatctl talks to a running chat-api instance.

Examples:
  # Start a guest conversation and ask a question
  chatctl send "What can I cook with eggs and tomatoes?"

  # Continue a conversation as a signed-in user
  CHATCTL_TOKEN=... chatctl send --chat 6f1c... "Make it spicier"

  # Claim a guest conversation after signing in
  chatctl sync 6f1c...`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.server, "server", envOr("CHATCTL_SERVER", "http://localhost:8190"), "Chat API base URL")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("CHATCTL_TOKEN"), "Bearer token (defaults to $CHATCTL_TOKEN)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", defaultTimeout, "Request timeout")

	root.AddCommand(
		newCreateCmd(opts),
		newSendCmd(opts),
		newListCmd(opts),
		newShowCmd(opts),
		newDeleteCmd(opts),
		newSyncCmd(opts),
	)
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
