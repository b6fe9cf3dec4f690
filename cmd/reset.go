package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ATsirtiris/rag-chatbot/internal"
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Start a new chat session",
	Long: `Clear the stored session so the next message starts a new chat.

When a session id exists the backend is told to drop it as well; that
call is best-effort and its failure does not block the local reset.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return fmt.Errorf("failed to open state store: %w", err)
		}
		defer store.Close()

		client := newClient(cfg, store)
		notifier := internal.NewNotifier(internal.DefaultToastTTL)
		defer notifier.Close()

		conv := internal.NewConversation(client, store, notifier)
		conv.Reset(cmd.Context())

		for _, t := range notifier.Active() {
			fmt.Println(t.Text)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
