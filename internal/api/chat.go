package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// chatTimeout bounds one chat-completion attempt.
const chatTimeout = 60 * time.Second

// ChatMessage is one message in a chat-completion conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest describes one chat-completion call. The pipeline uses it only
// for the optional text-cleaning pass before synthesis.
type ChatRequest struct {
	Model       string
	Messages    []ChatMessage
	Temperature float64
	MaxTokens   int
}

// ChatComplete sends a chat-completion request and returns the generated text
// of the first choice.
func (c *Client) ChatComplete(ctx context.Context, req ChatRequest) (string, error) {
	payload, err := json.Marshal(struct {
		Model       string        `json:"model"`
		Messages    []ChatMessage `json:"messages"`
		Temperature float64       `json:"temperature"`
		MaxTokens   int           `json:"max_tokens"`
	}{req.Model, req.Messages, req.Temperature, req.MaxTokens})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	body, err := c.doWithRetry(ctx, "chat completion", chatTimeout, func(ctx context.Context) (*http.Request, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		return httpReq, nil
	})
	if err != nil {
		return "", err
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse chat response: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("received empty response from chat API")
	}
	return response.Choices[0].Message.Content, nil
}
