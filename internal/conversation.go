package internal

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultTitle is the sentinel title of a fresh conversation.
const DefaultTitle = "New Chat"

const titleMaxChars = 30

// Conversation owns the session identity, the message log, and the derived
// title. At most one send is outstanding at a time; a second send while one
// is in flight is a silent no-op. Reset and Import are rejected while a
// send is in flight.
type Conversation struct {
	mu        sync.Mutex
	client    *Client
	store     Store
	notifier  *Notifier
	opts      ChatOptions
	sessionID string
	title     string
	messages  []Message
	awaiting  bool
	subs      []func()
}

// NewConversation creates a conversation, restoring a previously persisted
// session id from the store when present. The transcript itself is not
// restored; history lives on the backend and in explicit exports.
func NewConversation(client *Client, store Store, notifier *Notifier) *Conversation {
	c := &Conversation{
		client:   client,
		store:    store,
		notifier: notifier,
		title:    DefaultTitle,
	}
	if store != nil {
		if id, err := store.Get(KeySessionID); err == nil && id != "" {
			c.sessionID = id
			LogDebug("restored session %s", id)
		}
	}
	return c
}

// Subscribe registers a callback fired after every state change, so a
// renderer can observe the conversation without the core knowing about it.
func (c *Conversation) Subscribe(fn func()) {
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	c.mu.Unlock()
}

func (c *Conversation) changed() {
	c.mu.Lock()
	subs := append(([]func())(nil), c.subs...)
	c.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// SetOptions updates the retrieval settings used for subsequent sends.
func (c *Conversation) SetOptions(opts ChatOptions) {
	c.mu.Lock()
	c.opts = opts
	c.mu.Unlock()
}

// Options returns the current retrieval settings.
func (c *Conversation) Options() ChatOptions {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts
}

// SessionID returns the backend-assigned session id, or "" before the
// first successful exchange.
func (c *Conversation) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Title returns the derived conversation title.
func (c *Conversation) Title() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.title
}

// Awaiting reports whether a send is in flight.
func (c *Conversation) Awaiting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.awaiting
}

// Messages returns a copy of the transcript.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}

// Stats recomputes the derived statistics over the current transcript.
func (c *Conversation) Stats() Stats {
	c.mu.Lock()
	msgs := append([]Message(nil), c.messages...)
	c.mu.Unlock()
	return ComputeStats(msgs)
}

// Document snapshots the conversation as a portable save document.
func (c *Conversation) Document() *SessionDocument {
	c.mu.Lock()
	defer c.mu.Unlock()
	history := c.messages
	if history == nil {
		history = []Message{}
	}
	return &SessionDocument{
		SessionID: c.sessionID,
		History:   append([]Message(nil), history...),
	}
}

// Send posts one user message. The user turn is appended before the round
// trip so the transcript shows it immediately; on failure it stays in the
// log unanswered and the error is raised as a notification. Returns false
// when the send was rejected (blank text or a send already in flight).
func (c *Conversation) Send(ctx context.Context, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	c.mu.Lock()
	if c.awaiting {
		c.mu.Unlock()
		return false
	}
	c.awaiting = true
	c.messages = append(c.messages, Message{Role: RoleUser, Content: text})
	if c.title == DefaultTitle && len(c.messages) == 1 {
		c.title = deriveTitle(text)
	}
	sessionID := c.sessionID
	opts := c.opts
	c.mu.Unlock()
	c.changed()

	res := c.client.Chat(ctx, text, sessionID, opts)

	c.mu.Lock()
	c.awaiting = false
	if !res.OK {
		c.mu.Unlock()
		msg := res.Data.Error
		if msg == "" {
			msg = "Request failed"
		}
		c.notifier.Push(msg)
		c.changed()
		return true
	}

	if res.Data.SessionID != "" && c.sessionID == "" {
		c.sessionID = res.Data.SessionID
		c.persistSessionID(res.Data.SessionID)
	}
	c.messages = append(c.messages, Message{
		Role:      RoleAssistant,
		Content:   res.Data.Answer,
		TokensIn:  res.Data.TokensIn,
		TokensOut: res.Data.TokensOut,
		LatencyMs: res.LatencyMs,
		Sources:   res.Data.Sources,
	})
	c.mu.Unlock()
	c.changed()
	return true
}

// Reset clears the conversation and starts fresh. The local reset always
// succeeds; when a session id existed the backend reset is attempted
// best-effort and its outcome ignored. Safe to call repeatedly.
func (c *Conversation) Reset(ctx context.Context) {
	c.mu.Lock()
	if c.awaiting {
		c.mu.Unlock()
		c.notifier.Push("Cannot start a new chat while a reply is pending")
		return
	}
	sessionID := c.sessionID
	c.sessionID = ""
	c.messages = nil
	c.title = DefaultTitle
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Delete(KeySessionID); err != nil {
			LogWarn("failed to evict stored session id: %v", err)
		}
	}
	if sessionID != "" {
		if !c.client.ResetSession(ctx, sessionID) {
			LogWarn("backend reset failed for session %s", sessionID)
		}
	}

	c.notifier.Push("Started a new chat")
	c.changed()
}

// ImportJSON parses a saved document and loads it. sourceName (usually the
// file name) is the title fallback when the history has no user message.
func (c *Conversation) ImportJSON(data []byte, sourceName string) error {
	var doc SessionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		c.notifier.Push("Invalid chat file")
		return &ImportError{Reason: "malformed document", Err: err}
	}
	return c.Import(&doc, sourceName)
}

// Import replaces the conversation with a saved document. A document
// without a session id or an array-shaped history is rejected with a
// single notification and no state change.
func (c *Conversation) Import(doc *SessionDocument, sourceName string) error {
	if !doc.Valid() {
		c.notifier.Push("Invalid chat file")
		return &ImportError{Reason: "missing session_id or history"}
	}

	c.mu.Lock()
	if c.awaiting {
		c.mu.Unlock()
		c.notifier.Push("Cannot load a chat while a reply is pending")
		return &ImportError{Reason: "send in flight"}
	}
	c.sessionID = doc.SessionID
	c.messages = append([]Message(nil), doc.History...)
	c.title = deriveImportTitle(doc.History, sourceName)
	c.mu.Unlock()

	c.persistSessionID(doc.SessionID)

	if sourceName != "" {
		c.notifier.Push("Loaded chat: " + sourceName)
	} else {
		c.notifier.Push("Chat loaded")
	}
	c.changed()
	return nil
}

func (c *Conversation) persistSessionID(id string) {
	if c.store == nil {
		return
	}
	if err := c.store.Set(KeySessionID, id); err != nil {
		LogWarn("failed to persist session id: %v", err)
	}
}

// deriveTitle builds the title from the first user message: the first 30
// characters, with an ellipsis marker when truncated.
func deriveTitle(text string) string {
	runes := []rune(text)
	if len(runes) <= titleMaxChars {
		return text
	}
	return strings.TrimSpace(string(runes[:titleMaxChars])) + "..."
}

// deriveImportTitle titles an imported conversation from its first user
// message, falling back to the source artifact's name.
func deriveImportTitle(history []Message, sourceName string) string {
	for _, m := range history {
		if m.Role == RoleUser {
			return deriveTitle(m.Content)
		}
	}
	if sourceName != "" {
		base := filepath.Base(sourceName)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return DefaultTitle
}
