package bedrock

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBedrockClient implements bedrockRuntimeClient for testing
type mockBedrockClient struct {
	response *bedrockruntime.ConverseOutput
	err      error
	input    *bedrockruntime.ConverseInput
}

func (m *mockBedrockClient) Converse(ctx context.Context, input *bedrockruntime.ConverseInput, opts ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	m.input = input
	return m.response, m.err
}

func textOutput(stop types.StopReason, texts ...string) *bedrockruntime.ConverseOutput {
	var blocks []types.ContentBlock
	for _, s := range texts {
		blocks = append(blocks, &types.ContentBlockMemberText{Value: s})
	}
	return &bedrockruntime.ConverseOutput{
		StopReason: stop,
		Output: &types.ConverseOutputMemberMessage{
			Value: types.Message{Role: types.ConversationRoleAssistant, Content: blocks},
		},
		Usage: &types.TokenUsage{
			InputTokens:  aws.Int32(10),
			OutputTokens: aws.Int32(20),
		},
		Metrics: &types.ConverseMetrics{
			LatencyMs: aws.Int64(100),
		},
	}
}

func TestNewLLMClient(t *testing.T) {
	tests := []struct {
		name     string
		input    LLMOptions
		expected LLMOptions
	}{
		{
			name:  "empty options uses defaults",
			input: LLMOptions{},
			expected: LLMOptions{
				ModelID:     defaultModelID,
				MaxTokens:   defaultMaxTokens,
				Temperature: defaultTemperature,
				TopP:        defaultTopP,
			},
		},
		{
			name: "partial options with defaults",
			input: LLMOptions{
				ModelID:   "custom-model",
				MaxTokens: 2048,
			},
			expected: LLMOptions{
				ModelID:     "custom-model",
				MaxTokens:   2048,
				Temperature: defaultTemperature,
				TopP:        defaultTopP,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient := &mockBedrockClient{}
			client := NewLLMClient(mockClient, tt.input)

			assert.Equal(t, tt.expected, client.opts)
			assert.Equal(t, mockClient, client.brc)
		})
	}
}

func TestLLMClient_Complete(t *testing.T) {
	tests := []struct {
		name          string
		response      *bedrockruntime.ConverseOutput
		err           error
		expected      string
		expectedError string
	}{
		{
			name:     "single text block",
			response: textOutput(types.StopReasonEndTurn, "Order the lentils and rice."),
			expected: "Order the lentils and rice.",
		},
		{
			name:     "several text blocks are joined",
			response: textOutput(types.StopReasonEndTurn, "First.", "  ", "Second."),
			expected: "First.\nSecond.",
		},
		{
			name:          "max tokens",
			response:      textOutput(types.StopReasonMaxTokens, "Order the"),
			expectedError: "model hit MaxTokens limit",
		},
		{
			name:          "content filtered",
			response:      textOutput(types.StopReasonContentFiltered),
			expectedError: "blocked by Bedrock safety filters",
		},
		{
			name:          "no text",
			response:      &bedrockruntime.ConverseOutput{StopReason: types.StopReasonEndTurn},
			expectedError: "model returned no text",
		},
		{
			name:          "api error",
			err:           errors.New("throttled"),
			expectedError: "throttled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient := &mockBedrockClient{response: tt.response, err: tt.err}
			client := NewLLMClient(mockClient, LLMOptions{})

			got, err := client.Complete(context.Background(), "be brief", "What should I order?")
			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)

			require.NotNil(t, mockClient.input)
			assert.Equal(t, defaultModelID, aws.ToString(mockClient.input.ModelId))
			require.Len(t, mockClient.input.System, 1)
			require.Len(t, mockClient.input.Messages, 1)
			assert.Equal(t, types.ConversationRoleUser, mockClient.input.Messages[0].Role)
		})
	}
}
