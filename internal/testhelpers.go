package internal

// CreateTestMessages returns a short exchange with realistic metadata.
func CreateTestMessages() []Message {
	page := 3
	return []Message{
		{
			Role:    RoleUser,
			Content: "What is attention?",
		},
		{
			Role:      RoleAssistant,
			Content:   "Attention weighs input tokens by relevance.",
			TokensIn:  120,
			TokensOut: 45,
			LatencyMs: 900,
			Sources: []Citation{
				{Source: "papers/attention.pdf", Page: &page, Score: 0.92, Snippet: "Attention is all you need"},
			},
		},
	}
}

// CreateTestDocument creates a save document with sample messages.
func CreateTestDocument(id string) *SessionDocument {
	return &SessionDocument{
		SessionID: id,
		History:   CreateTestMessages(),
	}
}

// CreateTestDocumentWithMessages creates a save document with custom messages.
func CreateTestDocumentWithMessages(id string, messages []Message) *SessionDocument {
	return &SessionDocument{
		SessionID: id,
		History:   messages,
	}
}
