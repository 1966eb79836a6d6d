// Package slack posts order confirmations to a Slack incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"foodagent"
)

const defaultUsername = "Food Ordering Assistant"

type Client struct {
	webhookURL string
	username   string
	httpClient foodagent.HTTPClient
}

func NewClient(webhookURL string, httpClient foodagent.HTTPClient) *Client {
	return &Client{
		webhookURL: webhookURL,
		username:   defaultUsername,
		httpClient: httpClient,
	}
}

type textObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type block struct {
	Type string      `json:"type"`
	Text *textObject `json:"text,omitempty"`
}

type payload struct {
	Channel     string  `json:"channel,omitempty"`
	Username    string  `json:"username,omitempty"`
	Text        string  `json:"text"`
	Blocks      []block `json:"blocks,omitempty"`
	UnfurlLinks bool    `json:"unfurl_links"`
}

// PostMessage sends message as plain text plus a single markdown section block.
// The first line of message becomes a header block.
func (c *Client) PostMessage(ctx context.Context, channel string, message string) error {
	body, err := json.Marshal(newPayload(channel, c.username, message))
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("failed to post message: %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	return nil
}

func newPayload(channel, username, message string) payload {
	p := payload{
		Channel:  channel,
		Username: username,
		Text:     message,
	}
	header, rest, found := strings.Cut(message, "\n")
	if !found || strings.TrimSpace(rest) == "" {
		p.Blocks = []block{{Type: "section", Text: &textObject{Type: "mrkdwn", Text: message}}}
		return p
	}
	p.Blocks = []block{
		{Type: "header", Text: &textObject{Type: "plain_text", Text: header}},
		{Type: "section", Text: &textObject{Type: "mrkdwn", Text: strings.TrimSpace(rest)}},
	}
	return p
}
