package llm

import (
	"context"
	"net/http"
	"strings"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "llava"
)

// ollamaClient implements the Client interface for a local Ollama server.
type ollamaClient struct {
	httpClient  *http.Client
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
}

func newOllamaClient(cfg Config) (Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}

	model := cfg.Model
	if model == "" {
		model = defaultOllamaModel
	}

	return &ollamaClient{
		httpClient:  newHTTPClient(cfg.timeout()),
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		temperature: cfg.temperature(),
		maxTokens:   cfg.maxTokens(),
	}, nil
}

type ollamaRequest struct {
	Options ollamaOptions `json:"options"`
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	System  string        `json:"system,omitempty"`
	Images  []string      `json:"images,omitempty"`
	Stream  bool          `json:"stream"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate sends a non-streaming generate request to Ollama.
func (c *ollamaClient) Generate(ctx context.Context, req Request) (string, error) {
	images, err := encodeImages(req.Images)
	if err != nil {
		return "", err
	}

	body := ollamaRequest{
		Model:  c.model,
		Prompt: req.Prompt,
		System: req.System,
		Stream: false,
		Options: ollamaOptions{
			Temperature: c.temperature,
			NumPredict:  c.maxTokens,
		},
	}
	for _, img := range images {
		body.Images = append(body.Images, img.Data)
	}

	var resp ollamaResponse
	if err := postJSON(ctx, c.httpClient, "Ollama", c.baseURL+"/api/generate", nil, body, &resp); err != nil {
		return "", err
	}

	return cleanReply(resp.Response), nil
}
