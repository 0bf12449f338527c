// Package testutil holds an in-process stand-in for the Discord API used by package tests.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// MockDiscordServer serves channel history pages and accepts webhook posts.
// History pages are returned in request order; requests past the last page get [].
type MockDiscordServer struct {
	*httptest.Server

	mu              sync.Mutex
	pages           [][]map[string]any
	historyStatus   int
	webhookStatus   int
	historyRequests []url.Values
	authHeaders     []string
	webhookBodies   []string
}

// NewMockDiscordServer creates a new mock Discord server.
func NewMockDiscordServer(t *testing.T) *MockDiscordServer {
	t.Helper()
	m := &MockDiscordServer{historyStatus: http.StatusOK, webhookStatus: http.StatusNoContent}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/channels/") && strings.HasSuffix(r.URL.Path, "/messages"):
			m.serveHistory(w, r)
		case strings.HasPrefix(r.URL.Path, "/api/webhooks/"):
			m.serveWebhook(w, r)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(m.Close)
	return m
}

func (m *MockDiscordServer) serveHistory(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	idx := len(m.historyRequests)
	m.historyRequests = append(m.historyRequests, r.URL.Query())
	m.authHeaders = append(m.authHeaders, r.Header.Get("Authorization"))
	status := m.historyStatus
	page := []map[string]any{}
	if idx < len(m.pages) {
		page = m.pages[idx]
	}
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != http.StatusOK {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, `{"message": "Missing Access", "code": 50001}`) //nolint:errcheck // test mock response
		return
	}
	_ = json.NewEncoder(w).Encode(page) //nolint:errcheck // test mock response
}

func (m *MockDiscordServer) serveWebhook(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck // recorded as-is
	m.mu.Lock()
	m.webhookBodies = append(m.webhookBodies, body.Content)
	status := m.webhookStatus
	m.mu.Unlock()
	w.WriteHeader(status)
	if status >= 300 {
		_, _ = io.WriteString(w, `{"message": "Unknown Webhook"}`) //nolint:errcheck // test mock response
	}
}

// AddPage appends one history page.
func (m *MockDiscordServer) AddPage(msgs ...map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages = append(m.pages, msgs)
}

// FailHistory makes every history request answer with status.
func (m *MockDiscordServer) FailHistory(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.historyStatus = status
}

// FailWebhook makes every webhook post answer with status.
func (m *MockDiscordServer) FailWebhook(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.webhookStatus = status
}

// HistoryRequests returns the query of each history request in order.
func (m *MockDiscordServer) HistoryRequests() []url.Values {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]url.Values(nil), m.historyRequests...)
}

// AuthHeaders returns the Authorization header of each history request.
func (m *MockDiscordServer) AuthHeaders() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.authHeaders...)
}

// WebhookBodies returns the content field of each webhook post.
func (m *MockDiscordServer) WebhookBodies() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.webhookBodies...)
}

// WebhookURL is a webhook address on the production host; route it with HTTPClient.
func (m *MockDiscordServer) WebhookURL() string {
	return "https://discord.com/api/webhooks/123/secret"
}

// HTTPClient returns a client that sends every request to the mock server.
func (m *MockDiscordServer) HTTPClient() *http.Client {
	return &http.Client{Transport: &RewriteTransport{Transport: http.DefaultTransport, Host: m.URL}}
}

// Message builds a raw Discord message payload.
func Message(id, timestamp, content string, embeds ...map[string]any) map[string]any {
	if embeds == nil {
		embeds = []map[string]any{}
	}
	return map[string]any{
		"id":         id,
		"channel_id": "chan",
		"timestamp":  timestamp,
		"content":    content,
		"embeds":     embeds,
	}
}

// Embed builds a raw embed payload with optional author and footer.
func Embed(title, description, author, footer string) map[string]any {
	e := map[string]any{"title": title, "description": description}
	if author != "" {
		e["author"] = map[string]any{"name": author}
	}
	if footer != "" {
		e["footer"] = map[string]any{"text": footer}
	}
	return e
}

// RewriteTransport points every request at Host, keeping path and query.
type RewriteTransport struct {
	Transport http.RoundTripper
	Host      string
}

func (t *RewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = "http"
	if t.Host != "" {
		host := strings.TrimPrefix(t.Host, "http://")
		host = strings.TrimPrefix(host, "https://")
		req.URL.Host = host
		req.Host = host
	}
	rt := t.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	return rt.RoundTrip(req)
}
