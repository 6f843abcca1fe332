package provider

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/danielolaszy/rh-issue/internal/config"
)

const (
	defaultOllamaURL   = "http://localhost:11434/api/generate"
	defaultOllamaModel = "deepseek-r1:7b"
)

// thinkBlock matches the reasoning section some local models prepend.
var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// Ollama talks to a local generation daemon such as Ollama serving DeepSeek.
type Ollama struct {
	url        string
	model      string
	httpClient *http.Client
}

func NewOllama(cfg config.AIConfig) *Ollama {
	url := cfg.URL
	if url == "" {
		url = defaultOllamaURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultOllamaModel
	}
	return &Ollama{
		url:        url,
		model:      model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func (p *Ollama) Improve(ctx context.Context, prompt, text string) (string, error) {
	req := ollamaRequest{
		Model:  p.model,
		Prompt: prompt + "\n\n" + text,
	}

	var resp ollamaResponse
	if err := postJSON(ctx, p.httpClient, p.url, nil, req, &resp); err != nil {
		return "", err
	}

	out := strings.TrimSpace(thinkBlock.ReplaceAllString(resp.Response, ""))
	if out == "" {
		return "", errors.New("empty response from local model")
	}
	return out, nil
}
