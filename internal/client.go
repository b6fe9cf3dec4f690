package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTopK is the retrieval depth sent when the caller leaves it unset.
const DefaultTopK = 8

// TokenSource yields the current bearer token, or "" when the user is not
// logged in (no Authorization header is sent in that case).
type TokenSource func() string

// ChatOptions carries the per-request retrieval settings.
type ChatOptions struct {
	UseRAG bool
	TopK   int
}

// ChatResult is the uniform envelope returned by Chat. A failed request
// never surfaces as an error or panic; ok is false and Data.Error holds
// the message to show.
type ChatResult struct {
	OK        bool
	LatencyMs int
	Data      ChatResponse
}

type chatRequest struct {
	Message   string  `json:"message"`
	SessionID *string `json:"session_id"`
	UseRAG    bool    `json:"use_rag"`
	K         int     `json:"k"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// Client is a stateless request/response mapper for the question-answering
// backend. Session identity and auth are supplied per call via the session
// id argument and the injected token source.
type Client struct {
	baseURL string
	httpc   *http.Client
	token   TokenSource
}

// NewClient creates a client for the backend at baseURL. token may be nil.
func NewClient(baseURL string, token TokenSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
		token:   token,
	}
}

// newRequest builds a JSON request against the backend, attaching the
// bearer token when one is available.
func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// clampTopK bounds k to the backend's accepted [1,10] range, applying the
// default when unset.
func clampTopK(k int) int {
	if k == 0 {
		k = DefaultTopK
	}
	if k < 1 {
		return 1
	}
	if k > 10 {
		return 10
	}
	return k
}

// Chat posts one user message. Latency is wall clock from dispatch until
// the response body is fully read.
func (c *Client) Chat(ctx context.Context, text, sessionID string, opts ChatOptions) ChatResult {
	payload := chatRequest{
		Message: text,
		UseRAG:  opts.UseRAG,
		K:       clampTopK(opts.TopK),
	}
	if sessionID != "" {
		payload.SessionID = &sessionID
	}

	start := time.Now()

	req, err := c.newRequest(ctx, http.MethodPost, "/chat", payload)
	if err != nil {
		return ChatResult{Data: ChatResponse{Error: "invalid request: " + err.Error()}}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		LogDebug("chat transport failure: %v", err)
		return ChatResult{
			LatencyMs: int(time.Since(start).Milliseconds()),
			Data:      ChatResponse{Error: "Network error: could not reach the backend"},
		}
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	latency := int(time.Since(start).Milliseconds())
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300

	var data ChatResponse
	if readErr != nil || json.Unmarshal(body, &data) != nil {
		ok = false
		data = ChatResponse{Error: fmt.Sprintf("Request failed with status %d", resp.StatusCode)}
	}
	if !ok && data.Error == "" {
		data.Error = fmt.Sprintf("Request failed with status %d", resp.StatusCode)
	}

	return ChatResult{OK: ok, LatencyMs: latency, Data: data}
}

// ResetSession asks the backend to drop the server-side session. The
// caller resets locally regardless, so this only reports success.
func (c *Client) ResetSession(ctx context.Context, sessionID string) bool {
	req, err := c.newRequest(ctx, http.MethodPost, "/reset_session", map[string]string{"session_id": sessionID})
	if err != nil {
		return false
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		LogDebug("reset_session transport failure: %v", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// Health fetches the backend health document. Any failure, transport or
// HTTP, yields nil rather than an error.
func (c *Client) Health(ctx context.Context) HealthStatus {
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		LogDebug("health transport failure: %v", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil
	}

	var health HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		LogDebug("health decode failure: %v", err)
		return nil
	}
	return health
}

// FetchSession retrieves the full persisted transcript by id.
func (c *Client) FetchSession(ctx context.Context, sessionID string) (*SessionDocument, error) {
	endpoint := "/session/" + sessionID
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &RequestError{Endpoint: endpoint, Err: err}
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &RequestError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RequestError{Endpoint: endpoint, Status: resp.StatusCode, Err: fmt.Errorf("failed to fetch session")}
	}

	var doc SessionDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, &RequestError{Endpoint: endpoint, Status: resp.StatusCode, Err: err}
	}
	return &doc, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	return c.authenticate(ctx, "/auth/login", username, password)
}

// Signup registers a new account and returns its bearer token.
func (c *Client) Signup(ctx context.Context, username, password string) (string, error) {
	return c.authenticate(ctx, "/auth/signup", username, password)
}

func (c *Client) authenticate(ctx context.Context, endpoint, username, password string) (string, error) {
	// Auth endpoints never carry a bearer header; build the request by hand.
	payload, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return "", &RequestError{Endpoint: endpoint, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &RequestError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", &RequestError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", &RequestError{Endpoint: endpoint, Status: resp.StatusCode, Err: fmt.Errorf("%s", bytes.TrimSpace(body))}
	}

	var result loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &RequestError{Endpoint: endpoint, Status: resp.StatusCode, Err: err}
	}
	if result.AccessToken == "" {
		return "", &RequestError{Endpoint: endpoint, Status: resp.StatusCode, Err: fmt.Errorf("empty access token")}
	}
	return result.AccessToken, nil
}
