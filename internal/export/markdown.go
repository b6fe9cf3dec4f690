package export

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/ATsirtiris/rag-chatbot/internal"
)

// MarkdownExporter writes the transcript as a readable Markdown document.
type MarkdownExporter struct{}

// Export writes the document to w.
func (e *MarkdownExporter) Export(doc *internal.SessionDocument, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# Session %s\n\n", doc.SessionID)
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(doc.History))

	stats := internal.ComputeStats(doc.History)
	if stats.TokensIn > 0 || stats.TokensOut > 0 {
		_, _ = fmt.Fprintf(w, "**Tokens:** in %d / out %d  \n", stats.TokensIn, stats.TokensOut)
		_, _ = fmt.Fprintf(w, "**Latency:** p50 %dms / p95 %dms\n\n", stats.P50, stats.P95)
	}

	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, msg := range doc.History {
		meta := ""
		if msg.Role == internal.RoleAssistant && msg.LatencyMs > 0 {
			meta = fmt.Sprintf(" (%dms)", msg.LatencyMs)
		}

		content := escapeMarkdown(msg.Content)
		_, _ = fmt.Fprintf(w, "**%s:**%s\n\n%s\n\n", msg.Role, meta, content)

		if len(msg.Sources) > 0 {
			_, _ = fmt.Fprintf(w, "Sources: %s\n\n", formatSources(msg.Sources))
		}

		if i < len(doc.History)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// formatSources renders citations the way the transcript footer does:
// base file name plus page when known.
func formatSources(sources []internal.Citation) string {
	parts := make([]string, 0, len(sources))
	for _, s := range sources {
		name := path.Base(s.Source)
		if name == "" || name == "." {
			name = "?"
		}
		if s.Page != nil {
			name = fmt.Sprintf("%s (p.%d)", name, *s.Page)
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, ", ")
}

// escapeMarkdown escapes markdown emphasis outside code blocks.
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
