package export

import (
	"io"

	"github.com/ATsirtiris/rag-chatbot/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter writes the save document as YAML.
type YAMLExporter struct{}

// Export writes the document to w.
func (e *YAMLExporter) Export(doc *internal.SessionDocument, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()

	return enc.Encode(doc)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
