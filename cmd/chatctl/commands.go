package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

func newCreateCmd(opts *clientOptions) *cobra.Command {
	var chatID string
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a conversation, or resume one with --chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(opts)
			defer client.Close()

			var out chat
			body := map[string]string{}
			if chatID != "" {
				body["chatId"] = chatID
			}
			if err := client.do(cmd.Context(), http.MethodPost, "/v1/chat/create", body, &out); err != nil {
				return err
			}
			printChat(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&chatID, "chat", "", "Existing conversation id")
	return cmd
}

func newSendCmd(opts *clientOptions) *cobra.Command {
	var (
		chatID  string
		history bool
	)
	cmd := &cobra.Command{
		Use:   "send [message]",
		Short: "Send a message and print the assistant reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(opts)
			defer client.Close()

			var out sendResult
			body := map[string]string{
				"chatId":  chatID,
				"message": strings.Join(args, " "),
			}
			if err := client.do(cmd.Context(), http.MethodPost, "/v1/chat/message", body, &out); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "chat: %s\n\n", out.ChatID)
			if history {
				printMessages(w, out.Messages)
				return nil
			}
			fmt.Fprintln(w, out.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&chatID, "chat", "", "Conversation to continue (a new one is created when empty)")
	cmd.Flags().BoolVar(&history, "history", false, "Print the whole transcript instead of just the reply")
	return cmd
}

func newListCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your conversations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(opts)
			defer client.Close()

			var out chatList
			if err := client.do(cmd.Context(), http.MethodGet, "/v1/chat/chats", nil, &out); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(out.Chats) == 0 {
				fmt.Fprintln(w, "no conversations")
				return nil
			}
			for _, c := range out.Chats {
				fmt.Fprintf(w, "%-40s %-4d %s  %s\n", c.ChatID, c.Metadata.MessageCount, c.Metadata.StartTime.Format("2006-01-02 15:04"), c.Title)
			}
			return nil
		},
	}
}

func newShowCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show [chat-id]",
		Short: "Print a conversation transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(opts)
			defer client.Close()

			var out chat
			if err := client.do(cmd.Context(), http.MethodGet, "/v1/chat/"+args[0], nil, &out); err != nil {
				return err
			}
			printChat(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newDeleteCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [chat-id]",
		Short: "Delete a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(opts)
			defer client.Close()

			var out statusResult
			if err := client.do(cmd.Context(), http.MethodDelete, "/v1/chat/"+args[0], nil, &out); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Message)
			return nil
		},
	}
}

func newSyncCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync [guest-chat-id]",
		Short: "Claim a guest conversation for the signed-in user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.token == "" {
				return fmt.Errorf("sync requires --token or CHATCTL_TOKEN")
			}
			client := newAPIClient(opts)
			defer client.Close()

			var out statusResult
			body := map[string]string{"temporaryChatId": args[0]}
			if err := client.do(cmd.Context(), http.MethodPost, "/v1/chat/sync", body, &out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", out.Message, out.ChatID)
			return nil
		},
	}
}

func printChat(w io.Writer, c chat) {
	owner := "guest"
	if c.UserID != nil {
		owner = *c.UserID
	}
	fmt.Fprintf(w, "chat:  %s\ntitle: %s\nowner: %s\n", c.ChatID, c.Title, owner)
	if len(c.Messages) > 0 {
		fmt.Fprintln(w)
		printMessages(w, c.Messages)
	}
}

func printMessages(w io.Writer, messages []message) {
	for _, m := range messages {
		fmt.Fprintf(w, "[%s] %s\n%s\n\n", m.Timestamp.Local().Format("15:04:05"), m.Role, m.Content)
	}
}
