package translate

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"cuesync/internal/config"
)

// Gemini talks to the generateContent endpoint.
type Gemini struct {
	settings  config.ProviderSettings
	transport *transport
}

// NewGemini constructs the provider.
func NewGemini(settings config.ProviderSettings, opts ...Option) *Gemini {
	return &Gemini{settings: settings, transport: newTransport(config.ProviderGemini, opts...)}
}

// Name returns "gemini".
func (p *Gemini) Name() string { return config.ProviderGemini }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

func (p *Gemini) endpoint() string {
	base := strings.TrimRight(strings.TrimSpace(p.settings.BaseURL), "/")
	return base + "/models/" + url.PathEscape(p.settings.Model) + ":generateContent?key=" +
		url.QueryEscape(strings.TrimSpace(p.settings.APIKey))
}

// Translate sends the prompt as a single user turn.
func (p *Gemini) Translate(ctx context.Context, req Request) (string, error) {
	if err := validateRequest(p.Name(), req); err != nil {
		return "", err
	}
	var payload geminiRequest
	payload.Contents = []geminiContent{{Parts: []geminiPart{{Text: BuildPrompt(req.Text, req.TargetLang, req.Context)}}}}
	payload.GenerationConfig.Temperature = p.settings.Temperature

	body, err := p.transport.postJSON(ctx, p.endpoint(), nil, payload)
	if err != nil {
		return "", err
	}
	var decoded geminiResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", &ProviderError{Provider: p.Name(), Message: "decode response", Err: err}
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", &ProviderError{Provider: p.Name(), Message: "response has no candidates: " + summarizeSnippet(string(body))}
	}
	var text strings.Builder
	for _, part := range decoded.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	content := cleanOutput(text.String())
	if content == "" {
		return "", &ProviderError{Provider: p.Name(), Message: "empty content (finishReason=" + decoded.Candidates[0].FinishReason + ")"}
	}
	return content, nil
}
