package export

import (
	"fmt"
	"io"

	"github.com/ATsirtiris/rag-chatbot/internal"
)

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(doc *internal.SessionDocument, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format. JSON is the portable
// contract format (the only one that can be imported back); the others are
// one-way transcript renderings.
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "json":
		return &JSONExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "jsonl":
		return &JSONLExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: json, yaml, md, jsonl)", format)
	}
}

// Filename returns the conventional artifact name for a session export.
func Filename(sessionID string, e Exporter) string {
	return fmt.Sprintf("session_%s.%s", sessionID, e.Extension())
}
