package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ATsirtiris/rag-chatbot/internal"
)

var (
	askUseRAG bool
	askTopK   int
	askFresh  bool
)

var (
	answerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135"))

	askMetaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	sourceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question",
	Long: `Send one question and print the answer with its citations.

The exchange continues the stored session unless --fresh is given, so a
follow-up 'ask' keeps the conversational context.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")

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
		if askFresh {
			conv.Reset(cmd.Context())
		}
		topK := askTopK
		if topK == 0 {
			topK = cfg.TopK
		}
		conv.SetOptions(internal.ChatOptions{
			UseRAG: askUseRAG || cfg.UseRAG,
			TopK:   topK,
		})

		if !conv.Send(context.Background(), question) {
			return fmt.Errorf("nothing to send")
		}

		messages := conv.Messages()
		last := messages[len(messages)-1]
		if last.Role != internal.RoleAssistant {
			// the newest toast holds the failure reason
			if toasts := notifier.Active(); len(toasts) > 0 {
				return fmt.Errorf("%s", toasts[len(toasts)-1].Text)
			}
			return fmt.Errorf("no answer received")
		}

		fmt.Println(answerStyle.Render(last.Content))
		fmt.Println()
		fmt.Println(askMetaStyle.Render(fmt.Sprintf(
			"tok in %d • out %d • %dms", last.TokensIn, last.TokensOut, last.LatencyMs)))
		for _, s := range last.Sources {
			line := "  " + s.Source
			if s.Page != nil {
				line += fmt.Sprintf(" (p.%d)", *s.Page)
			}
			fmt.Println(sourceStyle.Render(line))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolVar(&askUseRAG, "rag", false, "Ground the answer in retrieved documents")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "Retrieval depth, 1-10 (default from config)")
	askCmd.Flags().BoolVar(&askFresh, "fresh", false, "Start a new session before asking")
}
