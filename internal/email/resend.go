// Package email sends transactional mail through the Resend HTTP API.
// Delivery is best effort: callers log failures, nothing is surfaced to
// the end user.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Config struct {
	BaseURL string
	APIKey  string
	From    string
	SiteURL string
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Configured reports whether an API key is present. The send helpers are
// no-ops without one.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

func (c *Client) send(ctx context.Context, to, subject, html string) error {
	if c.cfg.APIKey == "" {
		return fmt.Errorf("missing email api key")
	}

	reqBody := map[string]interface{}{
		"from":    c.cfg.From,
		"to":      to,
		"subject": subject,
		"html":    html,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal email request failed: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/emails"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("build email request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("email request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("email response status %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}

func (c *Client) SendWelcome(ctx context.Context, to, name string) error {
	html := fmt.Sprintf(`<h1>Welcome, %s</h1>
<p>Thank you for joining our luxury minimalist journal. Your journey into the subconscious begins now.</p>
<p>Write for seven days, and then consult with your AI-powered guides.</p>
<a href="%s">Begin Writing</a>`, name, c.cfg.SiteURL)
	return c.send(ctx, to, "Welcome to Your Subconscious Journey", html)
}

func (c *Client) SendReminder(ctx context.Context, to, name string) error {
	html := fmt.Sprintf(`<p>Hi %s,</p>
<p>This is a gentle reminder to take a moment today to capture your thoughts in your journal.</p>
<p>Even a few sentences can reveal profound patterns over time.</p>
<a href="%s">Open Your Journal</a>`, name, c.cfg.SiteURL)
	return c.send(ctx, to, "A Moment for Reflection", html)
}

func (c *Client) SendCycleCompletion(ctx context.Context, to, name string) error {
	html := fmt.Sprintf(`<h1>Insights Await</h1>
<p>Congratulations %s, you've completed a full 7-day cycle of journaling.</p>
<p>Your AI guides are now ready to help you analyze the patterns that have emerged this week.</p>
<a href="%s/journal">View Your Analysis</a>`, name, c.cfg.SiteURL)
	return c.send(ctx, to, "Your 7-Day Cycle is Complete", html)
}
