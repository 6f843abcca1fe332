package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/danielolaszy/rh-issue/internal/config"
)

const (
	cloudPlatformScope     = "https://www.googleapis.com/auth/cloud-platform"
	anthropicVertexVersion = "vertex-2023-10-16"
	vertexMaxTokens        = 4096
	defaultVertexLocation  = "us-central1"
	adcDependency          = "Google application default credentials"
	adcHint                = "run `gcloud auth application-default login`"
)

// VertexRoute identifies which model family a Vertex provider serves.
type VertexRoute string

const (
	RouteClaude VertexRoute = "claude"
	RouteGemini VertexRoute = "gemini"
)

// Vertex serves Claude and Gemini models hosted on Google Cloud Vertex AI.
// The model name picks the family once, at construction; exactly one of
// claude and gemini is set.
type Vertex struct {
	claude *vertexClaude
	gemini *vertexGemini
}

// NewVertex builds the Vertex provider for cfg.Model. Model names starting
// with "claude" use the Anthropic publisher endpoint and names starting with
// "gemini" the Google one, case-insensitively. Any other name is a
// configuration error.
func NewVertex(cfg config.AIConfig) (*Vertex, error) {
	if cfg.Model == "" {
		return nil, config.Errorf("the vertex provider requires JIRA_AI_MODEL")
	}

	location := cfg.Location
	if location == "" {
		location = defaultVertexLocation
	}

	model := strings.ToLower(cfg.Model)
	switch {
	case strings.HasPrefix(model, string(RouteClaude)):
		project := cfg.ClaudeProject
		if project == "" {
			project = cfg.Project
		}
		if project == "" {
			return nil, config.Errorf("Claude on Vertex AI requires ANTHROPIC_VERTEX_PROJECT_ID or GOOGLE_CLOUD_PROJECT")
		}
		return &Vertex{claude: &vertexClaude{
			endpoint: newVertexEndpoint(cfg, project, location, "anthropic", "rawPredict"),
		}}, nil

	case strings.HasPrefix(model, string(RouteGemini)):
		if cfg.Project == "" {
			return nil, config.Errorf("Gemini on Vertex AI requires GOOGLE_CLOUD_PROJECT")
		}
		return &Vertex{gemini: &vertexGemini{
			endpoint: newVertexEndpoint(cfg, cfg.Project, location, "google", "generateContent"),
		}}, nil
	}

	return nil, config.Errorf("unsupported Vertex AI model %q: model names must start with %q or %q",
		cfg.Model, RouteClaude, RouteGemini)
}

// Route reports the model family selected at construction.
func (v *Vertex) Route() VertexRoute {
	if v.claude != nil {
		return RouteClaude
	}
	return RouteGemini
}

func (v *Vertex) Improve(ctx context.Context, prompt, text string) (string, error) {
	var (
		reply string
		err   error
	)
	switch {
	case v.claude != nil:
		reply, err = v.claude.complete(ctx, prompt, text)
	case v.gemini != nil:
		reply, err = v.gemini.complete(ctx, prompt, text)
	default:
		return "", errors.New("vertex provider has no model family")
	}
	if err != nil {
		return "", err
	}
	return extractContent(reply), nil
}

// vertexEndpoint holds what both families share: the predict URL, the HTTP
// client and lazily resolved credentials.
type vertexEndpoint struct {
	url        string
	httpClient *http.Client

	// findTokens resolves credentials on first use; replaced in tests.
	findTokens func(ctx context.Context) (oauth2.TokenSource, error)
	tokens     oauth2.TokenSource
}

func newVertexEndpoint(cfg config.AIConfig, project, location, publisher, method string) vertexEndpoint {
	base := cfg.URL
	if base == "" {
		if location == "global" {
			base = "https://aiplatform.googleapis.com"
		} else {
			base = fmt.Sprintf("https://%s-aiplatform.googleapis.com", location)
		}
	}
	endpoint := fmt.Sprintf("%s/v1/projects/%s/locations/%s/publishers/%s/models/%s:%s",
		strings.TrimRight(base, "/"), url.PathEscape(project), url.PathEscape(location),
		publisher, cfg.Model, method)

	return vertexEndpoint{
		url:        endpoint,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		findTokens: defaultTokenSource,
	}
}

func defaultTokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	creds, err := google.FindDefaultCredentials(ctx, cloudPlatformScope)
	if err != nil {
		return nil, err
	}
	return creds.TokenSource, nil
}

func (e *vertexEndpoint) post(ctx context.Context, body, out any) error {
	if e.tokens == nil {
		ts, err := e.findTokens(ctx)
		if err != nil {
			return &Error{Dependency: adcDependency, Hint: adcHint, Err: err}
		}
		e.tokens = ts
	}
	return postJSON(ctx, e.httpClient, e.url, e.tokens, body, out)
}

// vertexClaude speaks the Anthropic messages format through rawPredict.
type vertexClaude struct {
	endpoint vertexEndpoint
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	Temperature      float64         `json:"temperature"`
	System           string          `json:"system,omitempty"`
	Messages         []claudeMessage `json:"messages"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (c *vertexClaude) complete(ctx context.Context, prompt, text string) (string, error) {
	req := claudeRequest{
		AnthropicVersion: anthropicVertexVersion,
		MaxTokens:        vertexMaxTokens,
		Temperature:      temperature,
		System:           prompt,
		Messages:         []claudeMessage{{Role: "user", Content: text}},
	}

	var resp claudeResponse
	if err := c.endpoint.post(ctx, req, &resp); err != nil {
		return "", err
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", errors.New("claude returned no text content")
	}
	return b.String(), nil
}

// vertexGemini speaks the generateContent format.
type vertexGemini struct {
	endpoint vertexEndpoint
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *vertexGemini) complete(ctx context.Context, prompt, text string) (string, error) {
	req := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: text}}}},
	}
	if prompt != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: prompt}}}
	}
	req.GenerationConfig.Temperature = temperature
	req.GenerationConfig.MaxOutputTokens = vertexMaxTokens

	var resp geminiResponse
	if err := g.endpoint.post(ctx, req, &resp); err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 {
		return "", errors.New("gemini returned no candidates")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	if b.Len() == 0 {
		return "", errors.New("gemini returned no text content")
	}
	return b.String(), nil
}
