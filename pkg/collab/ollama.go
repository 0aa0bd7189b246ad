package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OllamaOptions configures the Ollama chat backend.
type OllamaOptions struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
}

// Ollama asks a local Ollama server (/api/chat, non-streaming) for the text.
type Ollama struct {
	opts   OllamaOptions
	client *http.Client
}

// NewOllama fills in defaults (http://127.0.0.1:11434, llama3.1, 0.7).
func NewOllama(opts OllamaOptions, client *http.Client) *Ollama {
	if strings.TrimSpace(opts.Endpoint) == "" {
		opts.Endpoint = "http://127.0.0.1:11434"
	}
	if strings.TrimSpace(opts.Model) == "" {
		opts.Model = "llama3.1"
	}
	if opts.Temperature == 0 {
		opts.Temperature = 0.7
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Ollama{opts: opts, client: client}
}

func (o *Ollama) Generate(ctx context.Context, req Request) (string, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(o.opts.Endpoint), "/") + "/api/chat"
	body := map[string]any{
		"model":  o.opts.Model,
		"stream": false,
		"messages": []map[string]string{
			{"role": "system", "content": "You are a terminal emulator. Reply only with raw terminal output."},
			{"role": "user", "content": Prompt(req)},
		},
		"options": map[string]any{"temperature": o.opts.Temperature},
	}
	buf, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode ollama request: %w", err)
	}
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	hreq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(hreq)
	if err != nil {
		return "", fmt.Errorf("ollama request failed on /api/chat: %w", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read ollama response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ollama http %d: %s", resp.StatusCode, compactSingleLine(string(payload), 240))
	}
	var parsed struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("ollama returned non-json payload")
	}
	content := stripFences(parsed.Message.Content)
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

func compactSingleLine(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if max > 0 && len(s) > max {
		return s[:max] + "..."
	}
	return s
}
