package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ATsirtiris/rag-chatbot/internal"
	"github.com/ATsirtiris/rag-chatbot/internal/tui"
)

var (
	chatUseRAG bool
	chatTopK   int
	chatLoad   string
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive chat",
	Long: `Open the interactive chat against the configured backend.

The previous session id is restored automatically; pass --load to
continue from an exported chat file instead.`,
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
		topK := chatTopK
		if topK == 0 {
			topK = cfg.TopK
		}
		conv.SetOptions(internal.ChatOptions{
			UseRAG: chatUseRAG || cfg.UseRAG,
			TopK:   topK,
		})

		if chatLoad != "" {
			data, err := os.ReadFile(chatLoad)
			if err != nil {
				return fmt.Errorf("failed to read chat file: %w", err)
			}
			if err := conv.ImportJSON(data, chatLoad); err != nil {
				return err
			}
		}

		p := tea.NewProgram(tui.New(conv, client, notifier, store))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("chat ui failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().BoolVar(&chatUseRAG, "rag", false, "Ground answers in retrieved documents")
	chatCmd.Flags().IntVarP(&chatTopK, "top-k", "k", 0, "Retrieval depth, 1-10 (default from config)")
	chatCmd.Flags().StringVar(&chatLoad, "load", "", "Continue from an exported chat file")
}
