package llm

import (
	"context"
	"fmt"
	"strings"
)

const anthropicDefaultMaxTokens = 1024

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      *struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type anthropicCaller struct {
	httpCaller
}

func (c *anthropicCaller) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if err := c.requireKey(); err != nil {
		return nil, err
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}

	reqBody := anthropicRequest{
		Model:       c.model,
		System:      req.System,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	}
	for _, m := range req.Messages {
		// System messages go in the top-level field.
		if m.Role == "system" {
			reqBody.System = strings.TrimSpace(reqBody.System + "\n\n" + m.Content)
			continue
		}
		reqBody.Messages = append(reqBody.Messages, anthropicMessage{Role: m.Role, Content: m.Content})
	}

	var result anthropicResponse
	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": "2023-06-01",
	}
	if err := c.postJSON(ctx, "/v1/messages", headers, reqBody, &result); err != nil {
		return nil, err
	}

	if result.Error != nil {
		return nil, fmt.Errorf("%w: anthropic error: %s", ErrGeneration, result.Error.Message)
	}

	var text strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("%w: anthropic returned no content", ErrGeneration)
	}

	resp := &ChatResponse{
		Model:      result.Model,
		Message:    NewTextMessage("assistant", text.String()),
		StopReason: result.StopReason,
	}
	if result.Usage != nil {
		resp.Usage = &Usage{
			PromptTokens:     result.Usage.InputTokens,
			CompletionTokens: result.Usage.OutputTokens,
		}
	}

	return resp, nil
}
