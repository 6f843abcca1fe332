package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/danielolaszy/rh-issue/internal/config"
)

const (
	defaultOpenAIURL   = "https://api.openai.com/v1/"
	defaultOpenAIModel = "gpt-4o-mini"
	temperature        = 0.8
)

// OpenAI calls the chat completions API of OpenAI or any compatible service.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI builds the hosted backend. The API key is required.
func NewOpenAI(cfg config.AIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, config.Errorf("the openai provider requires JIRA_AI_API_KEY")
	}

	baseURL := cfg.URL
	if baseURL == "" {
		baseURL = defaultOpenAIURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		option.WithMaxRetries(0),
	)

	return &OpenAI{client: client, model: model}, nil
}

func (p *OpenAI) Improve(ctx context.Context, prompt, text string) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt),
			openai.UserMessage(text),
		},
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
