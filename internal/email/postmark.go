package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

const defaultAPIURL = "https://api.postmarkapp.com/email"

// Client sends transactional email through Postmark.
type Client struct {
	serverToken string
	fromEmail   string
	apiURL      string
	httpClient  *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithAPIURL overrides the Postmark endpoint, used by tests.
func WithAPIURL(url string) Option {
	return func(cl *Client) {
		cl.apiURL = url
	}
}

func NewClient(serverToken, fromEmail string, opts ...Option) *Client {
	c := &Client{
		serverToken: serverToken,
		fromEmail:   fromEmail,
		apiURL:      defaultAPIURL,
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the server token is set.
func (c *Client) Configured() bool {
	return c.serverToken != ""
}

type postmarkEmail struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
}

// DigestAnswer is one member's answer line in the weekly digest.
type DigestAnswer struct {
	Name   string
	Answer string
}

// SendWeeklyDigest mails the week's question and everyone's answers to one
// family member. Transient failures (network errors and Postmark 5xx) are
// retried with exponential backoff; 4xx responses are permanent and fail
// immediately.
func (c *Client) SendWeeklyDigest(ctx context.Context, toEmail, familyName, questionText string, answers []DigestAnswer) error {
	if !c.Configured() {
		return fmt.Errorf("email client not configured: missing server token")
	}

	var text, htmlBody strings.Builder
	fmt.Fprintf(&text, "This week's question for %s:\n\n%s\n\n", familyName, questionText)
	fmt.Fprintf(&htmlBody, "<p>This week's question for <strong>%s</strong>:</p><p><em>%s</em></p><ul>",
		html.EscapeString(familyName), html.EscapeString(questionText))
	for _, a := range answers {
		fmt.Fprintf(&text, "%s: %s\n", a.Name, a.Answer)
		fmt.Fprintf(&htmlBody, "<li><strong>%s</strong>: %s</li>",
			html.EscapeString(a.Name), html.EscapeString(a.Answer))
	}
	htmlBody.WriteString("</ul>")

	payload := postmarkEmail{
		From:     c.fromEmail,
		To:       toEmail,
		Subject:  fmt.Sprintf("%s's week in answers", familyName),
		HtmlBody: htmlBody.String(),
		TextBody: text.String(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		return c.post(ctx, body)
	})
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.serverToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return retry.RetryableError(fmt.Errorf("send email: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return retry.RetryableError(fmt.Errorf("postmark API error: status %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		return fmt.Errorf("postmark API error: status %d", resp.StatusCode)
	}
	return nil
}
