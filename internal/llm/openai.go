package llm

import (
	"encoding/json"
	"errors"
)

// OpenAI-compatible chat completions, as served by OpenAI itself and by most
// hosted gateways.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type openAIWire struct{}

// NewOpenAIClient creates an LLMClient for an OpenAI-compatible endpoint.
// cfg.Endpoint is the API base, e.g. https://api.openai.com/v1.
func NewOpenAIClient(cfg LLMConfig, observer Observer) LLMClient {
	cfg.Provider = ProviderOpenAI
	return newHTTPClient(cfg, openAIWire{}, observer)
}

func (openAIWire) generatePath() string { return "/chat/completions" }
func (openAIWire) healthPath() string   { return "/models" }

func (openAIWire) encode(model string, req GenerateRequest, temperature float64, maxTokens int) any {
	msgs := make([]chatMessage, 0, 2)
	if req.SystemPrompt != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: req.UserPrompt})
	return chatRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
}

func (openAIWire) decode(body []byte) (string, string, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", err
	}
	if len(resp.Choices) == 0 {
		return "", "", errors.New("response has no choices")
	}
	return resp.Choices[0].Message.Content, resp.Model, nil
}
