package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ATsirtiris/rag-chatbot/internal"
)

// JSONLExporter writes one message per line, each tagged with the session
// id so lines stay self-describing when files are concatenated.
type JSONLExporter struct{}

// Export writes the document to w.
func (e *JSONLExporter) Export(doc *internal.SessionDocument, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, msg := range doc.History {
		obj := map[string]interface{}{
			"session_id": doc.SessionID,
			"role":       msg.Role,
			"content":    msg.Content,
		}
		if msg.LatencyMs > 0 {
			obj["latencyMs"] = msg.LatencyMs
		}
		if msg.TokensIn > 0 || msg.TokensOut > 0 {
			obj["tokens_in"] = msg.TokensIn
			obj["tokens_out"] = msg.TokensOut
		}

		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
