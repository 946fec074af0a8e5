package llm

import (
    "context"
    "errors"
    "net/http"
    "strings"

    openai "github.com/sashabaranov/go-openai"
)

// DefaultBaseURL points at OpenRouter, which speaks the OpenAI chat API.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// ErrNoChoices is returned when a completion carries no choices.
var ErrNoChoices = errors.New("no choices")

// Client is the minimal interface needed by core logic to call a chat model.
// It mirrors CreateChatCompletion so any OpenAI-compatible backend, or a test
// stub, can be plugged in.
type Client interface {
    CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIProvider adapts *openai.Client to the Client interface.
type OpenAIProvider struct {
    Inner *openai.Client
}

// NewOpenAIProvider builds a provider for an OpenAI-compatible endpoint. An
// empty baseURL selects DefaultBaseURL.
func NewOpenAIProvider(baseURL, apiKey string, httpClient *http.Client) *OpenAIProvider {
    cfg := openai.DefaultConfig(apiKey)
    cfg.BaseURL = DefaultBaseURL
    if strings.TrimSpace(baseURL) != "" {
        cfg.BaseURL = strings.TrimRight(baseURL, "/")
    }
    if httpClient != nil {
        cfg.HTTPClient = httpClient
    }
    return &OpenAIProvider{Inner: openai.NewClientWithConfig(cfg)}
}

func (p *OpenAIProvider) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
    return p.Inner.CreateChatCompletion(ctx, request)
}

// FirstContent returns the trimmed content of the first choice.
func FirstContent(resp openai.ChatCompletionResponse) (string, error) {
    if len(resp.Choices) == 0 {
        return "", ErrNoChoices
    }
    return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
