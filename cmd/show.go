package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ATsirtiris/rag-chatbot/internal"
	"github.com/ATsirtiris/rag-chatbot/internal/export"
)

var showLimit int

var (
	sessionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	sessionMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				MarginBottom(1)

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 1)

	assistantMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true).
				Padding(0, 1)

	messageContentStyle = lipgloss.NewStyle().
				Padding(0, 2).
				MarginBottom(1)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Show messages from an exported chat file",
	Long:  `Display the transcript of a previously exported chat (json format).`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open chat file: %w", err)
		}
		defer file.Close()

		doc, err := export.ReadDocument(file)
		if err != nil {
			return err
		}
		if !doc.Valid() {
			return fmt.Errorf("invalid chat file: missing session_id or history")
		}

		stats := internal.ComputeStats(doc.History)
		fmt.Println(sessionHeaderStyle.Render("Session " + doc.SessionID))
		fmt.Println(sessionMetaStyle.Render(fmt.Sprintf(
			"%d message(s) • in %d • out %d • p50 %dms • p95 %dms",
			len(doc.History), stats.TokensIn, stats.TokensOut, stats.P50, stats.P95)))

		messages := doc.History
		if showLimit > 0 && len(messages) > showLimit {
			fmt.Println(sessionMetaStyle.Render(fmt.Sprintf(
				"(showing last %d of %d)", showLimit, len(messages))))
			messages = messages[len(messages)-showLimit:]
		}

		for _, msg := range messages {
			if msg.Role == internal.RoleUser {
				fmt.Println(userMessageStyle.Render("you"))
			} else {
				header := "ai"
				if msg.LatencyMs > 0 {
					header = fmt.Sprintf("ai (%dms)", msg.LatencyMs)
				}
				fmt.Println(assistantMessageStyle.Render(header))
			}
			fmt.Println(messageContentStyle.Render(msg.Content))
			if len(msg.Sources) > 0 {
				names := make([]string, 0, len(msg.Sources))
				for _, s := range msg.Sources {
					names = append(names, s.Source)
				}
				fmt.Println(sessionMetaStyle.Render("  sources: " + strings.Join(names, ", ")))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&showLimit, "limit", "n", 0, "Show only the last N messages")
}
