package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const apiURL = "https://api.openai.com/v1/chat/completions"

// OpenAI asks a chat-completions model for the title. The endpoint URL is a
// field so tests can point the client at a local server.
type OpenAI struct {
	URL        string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewOpenAI builds a client for the given key and model. The request timeout
// defaults to 30 seconds and can be overridden with OPENAI_TIMEOUT_SECONDS.
func NewOpenAI(apiKey, model string) *OpenAI {
	timeout := 30
	if v := os.Getenv("OPENAI_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			timeout = n
		}
	}
	return &OpenAI{
		URL:        apiURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *OpenAI) Title(ctx context.Context, excerpt, _ string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("openai: no api key")
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You title scanned documents for filing."},
			{Role: "user", Content: prompt + "\n\n" + excerpt},
		},
		Temperature: 0,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call openai: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("openai error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai: empty response")
	}

	title := Clean(strings.TrimSpace(parsed.Choices[0].Message.Content))
	if title == "" {
		return "", fmt.Errorf("openai: blank title")
	}
	return title, nil
}
