// Package bedrock narrates recommendations with a model hosted on Amazon
// Bedrock through the Converse API.
package bedrock

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

const (
	// defaultModelID is an inference profile ID, not a foundation model ID.
	defaultModelID = "us.anthropic.claude-3-7-sonnet-20250219-v1:0"

	// Summaries are a few sentences long.
	defaultMaxTokens = 512

	defaultTemperature = 0.2
	defaultTopP        = 0.9
)

type bedrockRuntimeClient interface {
	Converse(context.Context, *bedrockruntime.ConverseInput, ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

type LLMOptions struct {
	ModelID     string
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

type LLMClient struct {
	brc  bedrockRuntimeClient
	opts LLMOptions
}

func NewLLMClient(brc bedrockRuntimeClient, opts LLMOptions) *LLMClient {
	if opts.ModelID == "" {
		opts.ModelID = defaultModelID
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Temperature == 0 {
		opts.Temperature = defaultTemperature
	}
	if opts.TopP == 0 {
		opts.TopP = defaultTopP
	}
	return &LLMClient{
		brc:  brc,
		opts: opts,
	}
}

// Complete sends one user turn with an optional system prompt and returns the
// model's text.
func (c *LLMClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	slog.Info("LLM_CLIENT: Invoked", "model", c.opts.ModelID, "prompt_len", len(prompt))

	in := &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.opts.ModelID),
		Messages: []types.Message{{
			Role:    types.ConversationRoleUser,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: prompt}},
		}},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(c.opts.MaxTokens),
			Temperature: aws.Float32(c.opts.Temperature),
			TopP:        aws.Float32(c.opts.TopP),
		},
	}
	if sp := strings.TrimSpace(system); sp != "" {
		in.System = []types.SystemContentBlock{&types.SystemContentBlockMemberText{Value: sp}}
	}

	out, err := c.brc.Converse(ctx, in)
	if err != nil {
		slog.Error("LLM_CLIENT: Bedrock invoke failed", "error", err, "model", c.opts.ModelID)
		return "", err
	}

	attrs := []any{"stop_reason", out.StopReason}
	if out.Metrics != nil {
		attrs = append(attrs, "latency_ms", aws.ToInt64(out.Metrics.LatencyMs))
	}
	if out.Usage != nil {
		attrs = append(attrs, "input_tokens", aws.ToInt32(out.Usage.InputTokens), "output_tokens", aws.ToInt32(out.Usage.OutputTokens))
	}
	slog.Info("LLM_CLIENT: Bedrock invoke succeeded", attrs...)

	switch out.StopReason {
	case types.StopReasonMaxTokens:
		slog.Warn("LLM_CLIENT: Model hit MaxTokens limit; consider increasing MaxTokens")
		return "", fmt.Errorf("model hit MaxTokens limit; consider increasing MaxTokens")

	case types.StopReasonGuardrailIntervened, types.StopReasonContentFiltered:
		slog.Warn("LLM_CLIENT: Model response blocked by Bedrock safety filters")
		return "", fmt.Errorf("model response blocked by Bedrock safety filters")
	}

	text := textFromOutput(out)
	if text == "" {
		return "", fmt.Errorf("model returned no text (stop reason %q)", out.StopReason)
	}
	return text, nil
}

// textFromOutput joins the text blocks of the output message with newlines.
func textFromOutput(out *bedrockruntime.ConverseOutput) string {
	if out == nil || out.Output == nil {
		return ""
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok || msg == nil {
		return ""
	}

	texts := make([]string, 0, len(msg.Value.Content))
	for _, cb := range msg.Value.Content {
		if t, ok := cb.(*types.ContentBlockMemberText); ok && t != nil && strings.TrimSpace(t.Value) != "" {
			texts = append(texts, strings.TrimSpace(t.Value))
		}
	}
	return strings.Join(texts, "\n")
}
