package cmd

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ATsirtiris/rag-chatbot/internal"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthCmd represents the health command
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe the backend and local state",
	Long: `Check the client's working environment by verifying:
  • Configuration and backend address
  • Local state store access
  • Backend health, per dependency

This command is useful for debugging connectivity before opening a chat.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(sectionStyle.Render("RAG Chatbot Health Check"))
		fmt.Println()

		// Step 1: configuration
		fmt.Println(infoStyle.Render("Step 1: Loading configuration..."))
		cfg, err := loadConfig()
		if err != nil {
			fmt.Println(errorStyle.Render("Failed to load configuration:"), err)
			return err
		}
		fmt.Println(successStyle.Render("Configuration loaded"))
		fmt.Printf("   Backend: %s\n", cfg.BaseURL)
		fmt.Println()

		// Step 2: state store
		fmt.Println(infoStyle.Render("Step 2: Opening local state store..."))
		store, err := openStore(cfg)
		if err != nil {
			fmt.Println(errorStyle.Render("Failed to open state store:"), err)
			return err
		}
		defer store.Close()
		fmt.Println(successStyle.Render("State store available"))
		if token, _ := store.Get(internal.KeyToken); token != "" {
			if user, _ := store.Get(internal.KeyUsername); user != "" {
				fmt.Printf("   Logged in as %s\n", user)
			} else {
				fmt.Println("   Bearer token present")
			}
		} else {
			fmt.Println(warningStyle.Render("   No bearer token stored (run 'rag-chatbot login')"))
		}
		fmt.Println()

		// Step 3: backend health
		fmt.Println(infoStyle.Render("Step 3: Probing backend health..."))
		client := newClient(cfg, store)
		status := client.Health(cmd.Context())
		if status == nil {
			fmt.Println(errorStyle.Render("Backend unreachable"))
		} else {
			names := make([]string, 0, len(status))
			for name := range status {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				if status[name].OK {
					fmt.Println(successStyle.Render(fmt.Sprintf("   %s: ok", name)))
				} else {
					fmt.Println(warningStyle.Render(fmt.Sprintf("   %s: not ok", name)))
				}
			}
		}
		fmt.Println()

		// Summary
		fmt.Println(sectionStyle.Render("Summary"))
		summary := internal.HealthText(status)
		switch {
		case status == nil:
			fmt.Println(errorStyle.Render(summary))
			return fmt.Errorf("health check failed: backend unavailable")
		case !status.Healthy():
			fmt.Println(warningStyle.Render(summary))
		default:
			fmt.Println(successStyle.Render(summary))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
