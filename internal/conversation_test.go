package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestConversation(t *testing.T, handler http.Handler) (*Conversation, *MemoryStore, *Notifier) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := NewMemoryStore()
	notifier := NewNotifier(time.Minute)
	t.Cleanup(notifier.Close)

	client := NewClient(srv.URL, nil, 5*time.Second)
	return NewConversation(client, store, notifier), store, notifier
}

func chatHandler(answer, sessionID string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := ChatResponse{Answer: answer, SessionID: sessionID, TokensIn: 10, TokensOut: 5}
		_ = json.NewEncoder(w).Encode(resp)
	})
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "short text kept verbatim",
			text: "What is attention?",
			want: "What is attention?",
		},
		{
			name: "exactly thirty characters",
			text: strings.Repeat("a", 30),
			want: strings.Repeat("a", 30),
		},
		{
			name: "long text truncated with ellipsis",
			text: "Explain backpropagation in simple terms please",
			want: "Explain backpropagation in sim...",
		},
		{
			name: "trailing space trimmed before ellipsis",
			text: "Tell me about the transformer architecture",
			want: "Tell me about the transformer...",
		},
		{
			name: "multibyte runes counted as characters",
			text: strings.Repeat("ä", 31),
			want: strings.Repeat("ä", 30) + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deriveTitle(tt.text); got != tt.want {
				t.Errorf("deriveTitle(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestSendSuccess(t *testing.T) {
	conv, store, notifier := newTestConversation(t, chatHandler("hello there", "sess-1"))

	if !conv.Send(context.Background(), "Hi backend") {
		t.Fatalf("Send() = false, want true")
	}

	msgs := conv.Messages()
	if len(msgs) != 2 {
		t.Fatalf("transcript has %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[0].Content != "Hi backend" {
		t.Errorf("user turn = %+v", msgs[0])
	}
	if msgs[1].Role != RoleAssistant || msgs[1].Content != "hello there" {
		t.Errorf("assistant turn = %+v", msgs[1])
	}
	if msgs[1].TokensIn != 10 || msgs[1].TokensOut != 5 {
		t.Errorf("assistant tokens = %d/%d, want 10/5", msgs[1].TokensIn, msgs[1].TokensOut)
	}

	if got := conv.SessionID(); got != "sess-1" {
		t.Errorf("SessionID() = %q, want sess-1", got)
	}
	if stored, _ := store.Get(KeySessionID); stored != "sess-1" {
		t.Errorf("persisted session id = %q, want sess-1", stored)
	}
	if got := conv.Title(); got != "Hi backend" {
		t.Errorf("Title() = %q, want the first user message", got)
	}
	if toasts := notifier.Active(); len(toasts) != 0 {
		t.Errorf("unexpected notifications on success: %+v", toasts)
	}
}

func TestSendRejectsBlankText(t *testing.T) {
	conv, _, _ := newTestConversation(t, chatHandler("x", "s"))

	if conv.Send(context.Background(), "") {
		t.Errorf("Send(\"\") = true, want false")
	}
	if conv.Send(context.Background(), "   \t  ") {
		t.Errorf("Send(whitespace) = true, want false")
	}
	if got := conv.Messages(); len(got) != 0 {
		t.Errorf("blank send appended messages: %+v", got)
	}
}

func TestSendSessionIDAdoptedOnce(t *testing.T) {
	var calls int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		// a changing id must not displace the adopted one
		fmt.Fprintf(w, `{"answer":"ok","session_id":"sess-%d"}`, n)
	})
	conv, _, _ := newTestConversation(t, handler)

	conv.Send(context.Background(), "first")
	conv.Send(context.Background(), "second")

	if got := conv.SessionID(); got != "sess-1" {
		t.Errorf("SessionID() = %q, want the first assigned id", got)
	}
}

func TestSendSingleFlight(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		<-release
		fmt.Fprint(w, `{"answer":"ok","session_id":"s"}`)
	})
	conv, _, _ := newTestConversation(t, handler)

	done := make(chan bool)
	go func() { done <- conv.Send(context.Background(), "slow question") }()

	deadline := time.After(2 * time.Second)
	for !conv.Awaiting() {
		select {
		case <-deadline:
			t.Fatalf("first send never became in-flight")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if conv.Send(context.Background(), "impatient second question") {
		t.Errorf("second Send() = true while one is in flight, want false")
	}

	close(release)
	if !<-done {
		t.Fatalf("first Send() = false, want true")
	}

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("backend saw %d requests, want 1", got)
	}
	if msgs := conv.Messages(); len(msgs) != 2 {
		t.Errorf("transcript has %d messages, want 2", len(msgs))
	}
}

func TestSendFailureKeepsUserTurn(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":"model overloaded"}`)
	})
	conv, store, notifier := newTestConversation(t, handler)

	if !conv.Send(context.Background(), "doomed question") {
		t.Fatalf("Send() = false; a completed failed exchange still returns true")
	}

	msgs := conv.Messages()
	if len(msgs) != 1 || msgs[0].Role != RoleUser {
		t.Fatalf("transcript = %+v, want the lone unanswered user turn", msgs)
	}
	if conv.Awaiting() {
		t.Errorf("Awaiting() = true after the exchange finished")
	}

	toasts := notifier.Active()
	if len(toasts) != 1 || toasts[0].Text != "model overloaded" {
		t.Errorf("toasts = %+v, want the backend error verbatim", toasts)
	}
	if stored, _ := store.Get(KeySessionID); stored != "" {
		t.Errorf("failed exchange persisted a session id: %q", stored)
	}
}

func TestSendTitleDerivedOnlyOnce(t *testing.T) {
	conv, _, _ := newTestConversation(t, chatHandler("ok", "s"))

	conv.Send(context.Background(), "first question")
	conv.Send(context.Background(), "second question")

	if got := conv.Title(); got != "first question" {
		t.Errorf("Title() = %q, want the first message to stick", got)
	}
}

func TestReset(t *testing.T) {
	var resetCalls int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/reset_session" {
			atomic.AddInt32(&resetCalls, 1)
			return
		}
		fmt.Fprint(w, `{"answer":"ok","session_id":"sess-1"}`)
	})
	conv, store, notifier := newTestConversation(t, handler)

	conv.Send(context.Background(), "hello")
	conv.Reset(context.Background())

	if got := conv.SessionID(); got != "" {
		t.Errorf("SessionID() = %q after reset, want empty", got)
	}
	if got := conv.Messages(); len(got) != 0 {
		t.Errorf("Messages() = %+v after reset, want empty", got)
	}
	if got := conv.Title(); got != DefaultTitle {
		t.Errorf("Title() = %q after reset, want %q", got, DefaultTitle)
	}
	if stored, _ := store.Get(KeySessionID); stored != "" {
		t.Errorf("stored session id = %q after reset, want evicted", stored)
	}
	if got := atomic.LoadInt32(&resetCalls); got != 1 {
		t.Errorf("backend reset called %d times, want 1", got)
	}

	toasts := notifier.Active()
	if len(toasts) == 0 || toasts[len(toasts)-1].Text != "Started a new chat" {
		t.Errorf("toasts = %+v, want a new-chat confirmation", toasts)
	}

	// a second reset has no session to drop and must not call the backend
	conv.Reset(context.Background())
	if got := atomic.LoadInt32(&resetCalls); got != 1 {
		t.Errorf("reset without a session hit the backend (%d calls)", got)
	}
}

func TestResetRejectedWhileAwaiting(t *testing.T) {
	release := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		fmt.Fprint(w, `{"answer":"ok","session_id":"s"}`)
	})
	conv, _, notifier := newTestConversation(t, handler)

	done := make(chan bool)
	go func() { done <- conv.Send(context.Background(), "slow") }()

	deadline := time.After(2 * time.Second)
	for !conv.Awaiting() {
		select {
		case <-deadline:
			t.Fatalf("send never became in-flight")
		case <-time.After(5 * time.Millisecond):
		}
	}

	conv.Reset(context.Background())
	if got := conv.Messages(); len(got) != 1 {
		t.Errorf("reset while awaiting cleared the transcript: %+v", got)
	}

	toasts := notifier.Active()
	if len(toasts) != 1 || !strings.Contains(toasts[0].Text, "reply is pending") {
		t.Errorf("toasts = %+v, want a pending-reply rejection", toasts)
	}

	close(release)
	<-done
}

func TestImportRoundTrip(t *testing.T) {
	conv, store, notifier := newTestConversation(t, chatHandler("ok", "s"))

	doc := CreateTestDocument("imported-1")
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if err := conv.ImportJSON(data, "old_chat.json"); err != nil {
		t.Fatalf("ImportJSON() error = %v", err)
	}

	if got := conv.SessionID(); got != "imported-1" {
		t.Errorf("SessionID() = %q, want imported-1", got)
	}
	if got := conv.Messages(); len(got) != len(doc.History) {
		t.Errorf("Messages() has %d entries, want %d", len(got), len(doc.History))
	}
	if stored, _ := store.Get(KeySessionID); stored != "imported-1" {
		t.Errorf("persisted session id = %q, want imported-1", stored)
	}

	toasts := notifier.Active()
	if len(toasts) != 1 || toasts[0].Text != "Loaded chat: old_chat.json" {
		t.Errorf("toasts = %+v, want the load confirmation", toasts)
	}
}

func TestImportEmptyHistory(t *testing.T) {
	conv, _, _ := newTestConversation(t, chatHandler("ok", "s"))

	// an empty array is a valid history; null is not
	if err := conv.ImportJSON([]byte(`{"session_id":"abc","history":[]}`), ""); err != nil {
		t.Errorf("ImportJSON(empty history) error = %v, want nil", err)
	}
	if got := conv.SessionID(); got != "abc" {
		t.Errorf("SessionID() = %q, want abc", got)
	}
}

func TestImportRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: `{{{`},
		{name: "missing session id", data: `{"history":[]}`},
		{name: "empty session id", data: `{"session_id":"","history":[]}`},
		{name: "null history", data: `{"session_id":"abc","history":null}`},
		{name: "missing history", data: `{"session_id":"abc"}`},
		{name: "history not an array", data: `{"session_id":"abc","history":"nope"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv, _, notifier := newTestConversation(t, chatHandler("ok", "s"))
			conv.Send(context.Background(), "existing state")

			before := conv.Messages()
			err := conv.ImportJSON([]byte(tt.data), "bad.json")
			if err == nil {
				t.Fatalf("ImportJSON() error = nil, want rejection")
			}
			var importErr *ImportError
			if !errors.As(err, &importErr) {
				t.Errorf("error %T is not an ImportError", err)
			}

			toasts := notifier.Active()
			if len(toasts) != 1 || toasts[0].Text != "Invalid chat file" {
				t.Errorf("toasts = %+v, want exactly one invalid-file notice", toasts)
			}
			if after := conv.Messages(); len(after) != len(before) {
				t.Errorf("rejected import changed the transcript: %d -> %d messages", len(before), len(after))
			}
		})
	}
}

func TestImportTitleFallsBackToSourceName(t *testing.T) {
	conv, _, _ := newTestConversation(t, chatHandler("ok", "s"))

	doc := &SessionDocument{
		SessionID: "abc",
		History:   []Message{{Role: RoleAssistant, Content: "only me here"}},
	}
	if err := conv.Import(doc, "/tmp/saved/physics_notes.json"); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if got := conv.Title(); got != "physics_notes" {
		t.Errorf("Title() = %q, want the file stem", got)
	}
}

func TestSubscribe(t *testing.T) {
	conv, _, _ := newTestConversation(t, chatHandler("ok", "s"))

	var fired int32
	conv.Subscribe(func() { atomic.AddInt32(&fired, 1) })

	conv.Send(context.Background(), "hello")
	if got := atomic.LoadInt32(&fired); got < 2 {
		t.Errorf("observer fired %d times across a send, want at least 2", got)
	}
}

func TestDocumentNeverNilHistory(t *testing.T) {
	conv, _, _ := newTestConversation(t, chatHandler("ok", "s"))

	doc := conv.Document()
	if doc.History == nil {
		t.Fatalf("Document() produced a nil history")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"history":[]`) {
		t.Errorf("empty transcript serialized as %s, want an empty array", data)
	}
}

func TestNewConversationRestoresSessionID(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Set(KeySessionID, "persisted-7"); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	notifier := NewNotifier(time.Minute)
	defer notifier.Close()

	conv := NewConversation(NewClient("http://localhost:1", nil, time.Second), store, notifier)
	if got := conv.SessionID(); got != "persisted-7" {
		t.Errorf("SessionID() = %q, want the persisted id", got)
	}
}
