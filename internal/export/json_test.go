package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ATsirtiris/rag-chatbot/internal"
)

func TestJSONExportRoundTrip(t *testing.T) {
	doc := internal.CreateTestDocument("round-trip")

	var buf bytes.Buffer
	e := &JSONExporter{}
	if err := e.Export(doc, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	got, err := ReadDocument(&buf)
	if err != nil {
		t.Fatalf("ReadDocument() error = %v", err)
	}

	if got.SessionID != doc.SessionID {
		t.Errorf("SessionID = %q, want %q", got.SessionID, doc.SessionID)
	}
	if len(got.History) != len(doc.History) {
		t.Fatalf("History has %d messages, want %d", len(got.History), len(doc.History))
	}
	reply := got.History[1]
	if reply.TokensIn != 120 || reply.TokensOut != 45 || reply.LatencyMs != 900 {
		t.Errorf("assistant metadata lost in round trip: %+v", reply)
	}
	if len(reply.Sources) != 1 || reply.Sources[0].Page == nil || *reply.Sources[0].Page != 3 {
		t.Errorf("citation lost in round trip: %+v", reply.Sources)
	}
	if !got.Valid() {
		t.Errorf("round-tripped document failed validation")
	}
}

func TestJSONExportEmptyHistory(t *testing.T) {
	doc := internal.CreateTestDocumentWithMessages("empty", []internal.Message{})

	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(doc, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"history": []`) {
		t.Errorf("empty history serialized as:\n%s\nwant an empty array, not null", buf.String())
	}
}

func TestJSONExportWireFieldNames(t *testing.T) {
	doc := internal.CreateTestDocument("fields")

	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(doc, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	out := buf.String()
	for _, field := range []string{`"session_id"`, `"history"`, `"role"`, `"content"`, `"tokens_in"`, `"tokens_out"`, `"latencyMs"`} {
		if !strings.Contains(out, field) {
			t.Errorf("output is missing field %s", field)
		}
	}
}

func TestReadDocumentMalformed(t *testing.T) {
	_, err := ReadDocument(strings.NewReader("{{{not json"))
	if err == nil {
		t.Fatalf("ReadDocument() error = nil, want failure")
	}
}
