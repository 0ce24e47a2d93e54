package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultLINEEndpoint is the Messaging API push endpoint.
const DefaultLINEEndpoint = "https://api.line.me/v2/bot/message/push"

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type linePushRequest struct {
	To       string        `json:"to"`
	Messages []lineMessage `json:"messages"`
}

type lineMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// LINESender pushes text messages with a channel access token.
type LINESender struct {
	endpoint string
	token    string
	client   HTTPDoer
}

// NewLINESender builds a sender. A nil client gets a default http.Client with timeout.
func NewLINESender(endpoint, token string, timeout time.Duration, client HTTPDoer) *LINESender {
	if endpoint == "" {
		endpoint = DefaultLINEEndpoint
	}
	if client == nil {
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &LINESender{endpoint: endpoint, token: token, client: client}
}

func (s *LINESender) Name() string { return "line" }

func (s *LINESender) Configured() bool { return s.token != "" }

// Send succeeds only on a 2xx response.
func (s *LINESender) Send(ctx context.Context, recipient, text string) error {
	body, err := json.Marshal(linePushRequest{
		To:       recipient,
		Messages: []lineMessage{{Type: "text", Text: text}},
	})
	if err != nil {
		return fmt.Errorf("marshal push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("push request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push rejected: status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
