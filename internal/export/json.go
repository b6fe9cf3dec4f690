package export

import (
	"encoding/json"
	"io"

	"github.com/ATsirtiris/rag-chatbot/internal"
)

// JSONExporter writes the save document as pretty-printed JSON. This is
// the round-trip format: exporting and re-importing reproduces the same
// session id and message log.
type JSONExporter struct{}

// Export writes the document to w.
func (e *JSONExporter) Export(doc *internal.SessionDocument, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(doc)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}

// ReadDocument parses a JSON save document from r.
func ReadDocument(r io.Reader) (*internal.SessionDocument, error) {
	var doc internal.SessionDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, &internal.ImportError{Reason: "malformed document", Err: err}
	}
	return &doc, nil
}
