package cmd

import (
	"fmt"
	"os"

	"github.com/ATsirtiris/rag-chatbot/internal"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	baseURL string
	version string = "dev"
	commit  string = "unknown"
	date    string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rag-chatbot",
	Short: "Terminal client for the RAG question-answering backend",
	Long: `A terminal client for a retrieval-augmented question-answering backend.

It keeps a chat session against the backend, renders the running
transcript with token and latency statistics, and can save or load
conversations as portable JSON documents.

Quick Start:
  rag-chatbot login                  # Obtain a bearer token
  rag-chatbot chat                   # Open the interactive chat
  rag-chatbot ask "What is RAG?"     # One-shot question
  rag-chatbot export --format md     # Save the current session`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Backend base URL (overrides config)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadConfig reads the configuration and applies command-line overrides.
func loadConfig() (*internal.Config, error) {
	cfg, err := internal.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return cfg, nil
}

// openStore opens the local state store at the configured path.
func openStore(cfg *internal.Config) (internal.Store, error) {
	path := cfg.StatePath
	if path == "" {
		var err error
		path, err = internal.DefaultStorePath()
		if err != nil {
			return nil, err
		}
	}
	return internal.OpenStore(path)
}

// newClient builds the API client with the store as its token source.
func newClient(cfg *internal.Config, store internal.Store) *internal.Client {
	token := func() string {
		t, err := store.Get(internal.KeyToken)
		if err != nil {
			internal.LogWarn("failed to read stored token: %v", err)
			return ""
		}
		return t
	}
	return internal.NewClient(cfg.BaseURL, token, cfg.Timeout())
}
