package gemini

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
	apiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
)

// Extractor implements port.DocumentExtractor using Google's Gemini API.
type Extractor struct {
	apiKey   string
	model    string
	endpoint string
	cfg      config.ExtractorProviderConfig
	client   *http.Client
}

// NewExtractor creates a Gemini-based document extractor.
func NewExtractor(cfg *config.ExtractorProviderConfig) *Extractor {
	return newExtractor(cfg, "")
}

// NewExtractorWithEndpoint creates an extractor pointing at a custom API endpoint (for testing).
func NewExtractorWithEndpoint(cfg *config.ExtractorProviderConfig, endpoint string) *Extractor {
	return newExtractor(cfg, endpoint)
}

func newExtractor(cfg *config.ExtractorProviderConfig, endpoint string) *Extractor {
	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
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

	mimeType, err := toGeminiMimeType(input.ContentType)
	if err != nil {
		return nil, err
	}

	encoded := base64.StdEncoding.EncodeToString(input.ImageBytes)

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]interface{}{
					{
						"inline_data": map[string]interface{}{
							"mime_type": mimeType,
							"data":      encoded,
						},
					},
					{
						"text": prompt,
					},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature":     e.cfg.Temperature,
			"topK":            e.cfg.TopK,
			"topP":            e.cfg.TopP,
			"maxOutputTokens": e.cfg.MaxOutputTokens,
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
	req.Header.Set("x-goog-api-key", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling gemini API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := extractor.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, extractor.NewRateLimitError("gemini", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return parseResponse(respBody, e.model, prompt)
}

func toGeminiMimeType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg":
		return "image/jpeg", nil
	case "image/png":
		return "image/png", nil
	default:
		return "", fmt.Errorf("unsupported content type for extraction: %s", contentType)
	}
}

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func parseResponse(body []byte, model, prompt string) (*port.ExtractOutput, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from API: no candidates")
	}

	if len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from API: no parts")
	}

	return &port.ExtractOutput{
		RawText:    resp.Candidates[0].Content.Parts[0].Text,
		ModelUsed:  model,
		PromptUsed: prompt,
	}, nil
}
