package llm

// ChatRequest represents a provider-agnostic chat completion request.
type ChatRequest struct {
	// System prompt (some providers handle this separately from messages)
	System string `json:"system,omitempty"`

	// Conversation messages
	Messages []Message `json:"messages"`

	// Generation parameters (unified across providers)
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature"`
}
