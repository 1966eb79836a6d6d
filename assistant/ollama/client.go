// Package ollama talks to a local Ollama server through its chat API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"foodagent"
)

type options struct {
	Temperature   float64 `json:"temperature,omitempty"`
	TopP          float64 `json:"top_p,omitempty"`
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
	NumCtx        int     `json:"num_ctx,omitempty"`
	NumPredict    int     `json:"num_predict,omitempty"`
}

type Client struct {
	endpoint   string
	model      string
	httpClient foodagent.HTTPClient
	options    options
}

type ClientOpts struct {
	BaseEndpoint string
	ModelID      string
	HTTPClient   foodagent.HTTPClient
}

func NewClient(opts ClientOpts) (*Client, error) {
	if strings.TrimSpace(opts.ModelID) == "" {
		return nil, fmt.Errorf("ollama: model id is required")
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Client{
		model:      opts.ModelID,
		httpClient: opts.HTTPClient,
		endpoint:   strings.TrimRight(opts.BaseEndpoint, "/") + "/api/chat",
		options: options{
			Temperature:   0.2,
			TopP:          0.9,
			RepeatPenalty: 1.05,
			NumCtx:        8192,
			NumPredict:    256,
		},
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  options   `json:"options,omitempty"`
}

type wireResponse struct {
	Message message `json:"message"`
	Done    bool    `json:"done"`
}

// Complete sends a system and a user message and returns the reply content.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	slog.Info("LLM_CLIENT: Invoked", "model", c.model, "prompt_len", len(prompt))

	msgs := make([]message, 0, 2)
	if sp := strings.TrimSpace(system); sp != "" {
		msgs = append(msgs, message{Role: "system", Content: sp})
	}
	msgs = append(msgs, message{Role: "user", Content: prompt})

	reqBytes, err := json.Marshal(wireRequest{
		Model:    c.model,
		Messages: msgs,
		Stream:   false,
		Options:  c.options,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(reqBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("LLM_CLIENT: %s: %s", resp.Status, string(body))
	}

	var wr wireResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		return "", fmt.Errorf("LLM_CLIENT: decode response: %w", err)
	}

	return wr.Message.Content, nil
}
