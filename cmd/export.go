package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ATsirtiris/rag-chatbot/internal"
	"github.com/ATsirtiris/rag-chatbot/internal/export"
)

var (
	exportFormat    string
	exportOutputDir string
	exportSessionID string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a session to file",
	Long: `Export a chat session to various formats (json, yaml, md, jsonl).

The transcript is fetched from the backend by session id; without
--session-id the current stored session is exported. Only the json
format can be loaded back with 'chat --load'.`,
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

		sessionID := exportSessionID
		if sessionID == "" {
			sessionID, err = store.Get(internal.KeySessionID)
			if err != nil {
				return err
			}
			if sessionID == "" {
				return fmt.Errorf("no active chat to save (pass --session-id or start a chat first)")
			}
		}

		client := newClient(cfg, store)
		doc, err := client.FetchSession(cmd.Context(), sessionID)
		if err != nil {
			return fmt.Errorf("failed to fetch session: %w", err)
		}

		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(exportOutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		path := filepath.Join(exportOutputDir, export.Filename(sessionID, exporter))
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create file %s: %w", path, err)
		}
		defer file.Close()

		if err := exporter.Export(doc, file); err != nil {
			return fmt.Errorf("failed to export session %s: %w", sessionID, err)
		}

		fmt.Printf("Export complete: %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Export format (json, yaml, md, jsonl)")
	exportCmd.Flags().StringVarP(&exportOutputDir, "out", "o", ".", "Output directory")
	exportCmd.Flags().StringVar(&exportSessionID, "session-id", "", "Export a specific session by ID")
}
