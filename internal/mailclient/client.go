package mailclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"portfolio-bot/model"
)

const DefaultBaseURL = "https://api.resend.com"

var (
	ErrNotConfigured = errors.New("mail client not configured")
	ErrDelivery      = errors.New("mail provider rejected message")
)

// Client delivers contact messages through the Resend HTTP API.
type Client struct {
	baseURL string
	apiKey  string
	to      string
	httpCli *http.Client
	breaker *CircuitBreaker
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpCli = h }
}

func WithBreaker(b *CircuitBreaker) Option {
	return func(c *Client) { c.breaker = b }
}

func NewClient(baseURL, apiKey, to string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		to:      to,
		httpCli: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = NewCircuitBreaker()
	}
	return c
}

// Configured reports whether both the API key and the recipient are set.
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.to != ""
}

func (c *Client) BreakerState() string {
	return c.breaker.State()
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	ReplyTo string `json:"reply_to,omitempty"`
}

type sendResponse struct {
	ID string `json:"id"`
}

// Send emails msg to the configured recipient and returns the provider's message id.
func (c *Client) Send(ctx context.Context, msg *model.ContactMessage) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	out, err := c.breaker.Execute(ctx, func() (interface{}, error) {
		return c.send(ctx, msg)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

func (c *Client) send(ctx context.Context, msg *model.ContactMessage) (string, error) {
	bs, err := json.Marshal(c.buildRequest(msg))
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(bs))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpCli.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%w: status %d: %s", ErrDelivery, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var sr sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return sr.ID, nil
}

func (c *Client) buildRequest(msg *model.ContactMessage) sendRequest {
	domain := c.to
	if at := strings.LastIndex(c.to, "@"); at >= 0 {
		domain = c.to[at+1:]
	}

	body := fmt.Sprintf(`<div style="font-family: system-ui, -apple-system, Roboto, Helvetica, Arial;">
<h2>New contact message</h2>
<p><strong>From:</strong> %s &lt;%s&gt;</p>
<hr />
<div style="white-space:pre-wrap; margin-top:8px;">%s</div>
</div>`, html.EscapeString(msg.Name), html.EscapeString(msg.Email), html.EscapeString(msg.Message))

	return sendRequest{
		From:    "Website <no-reply@" + domain + ">",
		To:      c.to,
		Subject: "Website contact: " + msg.Name,
		HTML:    body,
		ReplyTo: msg.Email,
	}
}
