package openrouter

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"publicpulse/internal/config"
	"publicpulse/internal/extractor"
	"publicpulse/internal/port"
)

const (
	apiURL = "https://openrouter.ai/api/v1/chat/completions"
)

// Extractor implements port.DocumentExtractor using the OpenRouter Chat
// Completions API. OpenRouter fronts many vision models behind one API, so
// the configured model string picks the actual backend.
type Extractor struct {
	apiKey   string
	model    string
	endpoint string
	cfg      config.ExtractorProviderConfig
	client   *http.Client
}

// NewExtractor creates an OpenRouter-based document extractor from a provider config.
func NewExtractor(cfg *config.ExtractorProviderConfig) *Extractor {
	return newExtractor(cfg, apiURL)
}

// NewExtractorWithEndpoint creates an extractor pointing at a custom API endpoint (for testing).
func NewExtractorWithEndpoint(cfg *config.ExtractorProviderConfig, endpoint string) *Extractor {
	return newExtractor(cfg, endpoint)
}

func newExtractor(cfg *config.ExtractorProviderConfig, endpoint string) *Extractor {
	model := cfg.DefaultModel
	if model == "" {
		model = "qwen/qwen2.5-vl-72b-instruct:free"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Extractor{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		cfg:      *cfg,
		client:   &http.Client{Timeout: timeout},
	}
}

func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	prompt := extractor.BuildExtractionPrompt(input.DocumentType)

	contentBlocks, err := buildContentBlocks(input, prompt)
	if err != nil {
		return nil, fmt.Errorf("building content blocks: %w", err)
	}

	reqBody := map[string]interface{}{
		"model":       e.model,
		"max_tokens":  e.cfg.MaxOutputTokens,
		"temperature": e.cfg.Temperature,
		"top_p":       e.cfg.TopP,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": contentBlocks,
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("HTTP-Referer", "https://publicpulse.go.ug")
	req.Header.Set("X-Title", "PublicPulse Portal")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling openrouter API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("openrouter API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := extractor.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, extractor.NewRateLimitError("openrouter", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return parseResponse(respBody, e.model, prompt)
}

func buildContentBlocks(input port.ExtractInput, prompt string) ([]map[string]interface{}, error) {
	switch input.ContentType {
	case "image/jpeg", "image/png":
	default:
		return nil, fmt.Errorf("unsupported content type for extraction: %s", input.ContentType)
	}

	encoded := base64.StdEncoding.EncodeToString(input.ImageBytes)
	dataURI := fmt.Sprintf("data:%s;base64,%s", input.ContentType, encoded)

	return []map[string]interface{}{
		{
			"type": "image_url",
			"image_url": map[string]interface{}{
				"url": dataURI,
			},
		},
		{
			"type": "text",
			"text": prompt,
		},
	}, nil
}

// chatResponse models the OpenRouter chat completions response.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, model, prompt string) (*port.ExtractOutput, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}

	return &port.ExtractOutput{
		RawText:    resp.Choices[0].Message.Content,
		ModelUsed:  model,
		PromptUsed: prompt,
	}, nil
}
