package llm

import (
	"context"
	"fmt"
)

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      openAIMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type openAICaller struct {
	httpCaller
}

func (c *openAICaller) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if err := c.requireKey(); err != nil {
		return nil, err
	}

	reqBody := openAIRequest{
		Model:       c.model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.System != "" {
		reqBody.Messages = append(reqBody.Messages, openAIMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		reqBody.Messages = append(reqBody.Messages, openAIMessage{Role: m.Role, Content: m.Content})
	}

	var result openAIResponse
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	if err := c.postJSON(ctx, "/v1/chat/completions", headers, reqBody, &result); err != nil {
		return nil, err
	}

	if result.Error != nil {
		return nil, fmt.Errorf("%w: openai error: %s", ErrGeneration, result.Error.Message)
	}

	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("%w: openai returned no choices", ErrGeneration)
	}

	resp := &ChatResponse{
		Model:      result.Model,
		Message:    NewTextMessage("assistant", result.Choices[0].Message.Content),
		StopReason: result.Choices[0].FinishReason,
	}
	if result.Usage != nil {
		resp.Usage = &Usage{
			PromptTokens:     result.Usage.PromptTokens,
			CompletionTokens: result.Usage.CompletionTokens,
		}
	}

	return resp, nil
}
