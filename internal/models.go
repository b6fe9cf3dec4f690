package internal

// Message roles as used on the wire.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single turn in the transcript
type Message struct {
	Role      string     `json:"role" yaml:"role"`
	Content   string     `json:"content" yaml:"content"`
	TokensIn  int        `json:"tokens_in,omitempty" yaml:"tokens_in,omitempty"`
	TokensOut int        `json:"tokens_out,omitempty" yaml:"tokens_out,omitempty"`
	LatencyMs int        `json:"latencyMs,omitempty" yaml:"latency_ms,omitempty"`
	Sources   []Citation `json:"sources,omitempty" yaml:"sources,omitempty"`
}

// Citation is a backend-supplied pointer to a source passage backing an
// answer. It is passed through untouched.
type Citation struct {
	Source  string  `json:"source,omitempty" yaml:"source,omitempty"`
	Page    *int    `json:"page,omitempty" yaml:"page,omitempty"`
	Score   float64 `json:"score,omitempty" yaml:"score,omitempty"`
	Snippet string  `json:"snippet,omitempty" yaml:"snippet,omitempty"`
}

// SessionDocument is the portable save format: the session id plus the
// message log verbatim. Its JSON shape is the stability contract for
// export/import round trips.
type SessionDocument struct {
	SessionID string    `json:"session_id" yaml:"session_id"`
	History   []Message `json:"history" yaml:"history"`
}

// Valid reports whether the document can be imported: a non-empty session
// id and an array-shaped history (an empty array is fine, a missing one
// is not).
func (d *SessionDocument) Valid() bool {
	return d != nil && d.SessionID != "" && d.History != nil
}

// ChatResponse mirrors the body returned by POST /chat.
type ChatResponse struct {
	Answer    string     `json:"answer,omitempty"`
	SessionID string     `json:"session_id,omitempty"`
	TokensIn  int        `json:"tokens_in,omitempty"`
	TokensOut int        `json:"tokens_out,omitempty"`
	Sources   []Citation `json:"sources,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// ComponentStatus is the per-dependency entry in the health document.
type ComponentStatus struct {
	OK bool `json:"ok"`
}

// HealthStatus is the backend health document: one entry per dependency
// (e.g. "redis", "openai").
type HealthStatus map[string]ComponentStatus

// Healthy reports whether every component is ok.
func (h HealthStatus) Healthy() bool {
	if len(h) == 0 {
		return false
	}
	for _, c := range h {
		if !c.OK {
			return false
		}
	}
	return true
}

// HealthText maps a health document to the user-facing probe result.
func HealthText(h HealthStatus) string {
	switch {
	case h == nil:
		return "Health: unavailable"
	case !h.Healthy():
		return "Health: degraded"
	default:
		return "Health: OK"
	}
}
