package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"cuesync/internal/config"
)

// OpenAI talks to an OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	settings  config.ProviderSettings
	transport *transport
}

// NewOpenAI constructs the provider.
func NewOpenAI(settings config.ProviderSettings, opts ...Option) *OpenAI {
	return &OpenAI{settings: settings, transport: newTransport(config.ProviderOpenAI, opts...)}
}

// Name returns "openai".
func (p *OpenAI) Name() string { return config.ProviderOpenAI }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Translate sends the subtitle document as a single chat completion.
func (p *OpenAI) Translate(ctx context.Context, req Request) (string, error) {
	if err := validateRequest(p.Name(), req); err != nil {
		return "", err
	}
	payload := chatRequest{
		Model: p.settings.Model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: BuildPrompt(req.Text, req.TargetLang, req.Context)},
		},
		Temperature: p.settings.Temperature,
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+strings.TrimSpace(p.settings.APIKey))
	body, err := p.transport.postJSON(ctx, p.settings.BaseURL, header, payload)
	if err != nil {
		return "", err
	}

	var completion chatResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", &ProviderError{Provider: p.Name(), Message: "decode response", Err: err}
	}
	if len(completion.Choices) == 0 {
		return "", &ProviderError{Provider: p.Name(), Message: "response has no choices: " + summarizeSnippet(string(body))}
	}
	choice := completion.Choices[0]
	content := cleanOutput(choice.Message.Content)
	if content == "" {
		msg := "empty content (finish_reason=" + choice.FinishReason + ")"
		if choice.Message.Refusal != "" {
			msg += ": " + choice.Message.Refusal
		}
		return "", &ProviderError{Provider: p.Name(), Message: msg}
	}
	return content, nil
}
