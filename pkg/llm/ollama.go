package llm

import (
	"context"
	"fmt"
)

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
	Options  ollamaOptions       `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResponse struct {
	Model   string `json:"model"`
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	DoneReason      string `json:"done_reason"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

type ollamaCaller struct {
	httpCaller
}

func (c *ollamaCaller) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	reqBody := ollamaChatRequest{
		Model:  c.model,
		Stream: false,
		Options: ollamaOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		},
	}
	if req.System != "" {
		reqBody.Messages = append(reqBody.Messages, ollamaChatMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		reqBody.Messages = append(reqBody.Messages, ollamaChatMessage{Role: m.Role, Content: m.Content})
	}

	var result ollamaChatResponse
	if err := c.postJSON(ctx, "/api/chat", nil, reqBody, &result); err != nil {
		return nil, err
	}

	if result.Message.Content == "" {
		return nil, fmt.Errorf("%w: ollama returned no content", ErrGeneration)
	}

	return &ChatResponse{
		Model:      result.Model,
		Message:    NewTextMessage("assistant", result.Message.Content),
		StopReason: result.DoneReason,
		Usage: &Usage{
			PromptTokens:     result.PromptEvalCount,
			CompletionTokens: result.EvalCount,
		},
	}, nil
}
