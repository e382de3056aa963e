package completion

import (
	"context"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI streams Chat Completions through the official SDK.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI returns a client with SDK retries switched off; a failed request
// is reported once and never replayed.
func NewOpenAI(apiKey, model, baseURL string) *OpenAI {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (o *OpenAI) Stream(ctx context.Context, systemInstruction, userMessage string) (Stream, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemInstruction),
			openai.UserMessage(userMessage),
		},
	}

	events := o.client.Chat.Completions.NewStreaming(ctx, params)
	return newSSEStream(events, chunkText), nil
}

func chunkText(chunk openai.ChatCompletionChunk) string {
	if len(chunk.Choices) == 0 {
		return ""
	}
	return chunk.Choices[0].Delta.Content
}
