package providers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/c360studio/formroute/mapper"
)

func init() {
	mapper.RegisterProvider(&OllamaProvider{})
}

// OllamaProvider implements the Ollama chat API for local models.
type OllamaProvider struct{}

func (p *OllamaProvider) Name() string {
	return "ollama"
}

func (p *OllamaProvider) BuildURL(baseURL string) string {
	return strings.TrimSuffix(baseURL, "/") + "/api/chat"
}

func (p *OllamaProvider) SetHeaders(req *http.Request, _ string) {
	// Ollama runs locally and needs no auth.
	req.Header.Set("Content-Type", "application/json")
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Error string `json:"error,omitempty"`
}

func (p *OllamaProvider) BuildRequestBody(model, prompt string, temperature float64, maxTokens int) ([]byte, error) {
	req := ollamaRequest{
		Model: model,
		Messages: []ollamaMessage{
			{Role: "user", Content: prompt},
		},
		Stream: false,
		Options: ollamaOptions{
			Temperature: temperature,
			NumPredict:  maxTokens,
		},
	}
	return json.Marshal(req)
}

func (p *OllamaProvider) ParseResponse(body []byte) (string, error) {
	var resp ollamaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse ollama response: %w", err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("ollama error: %s", resp.Error)
	}
	return resp.Message.Content, nil
}
