package port

import (
	"context"

	"publicpulse/internal/domain"
)

// ExtractInput carries one image and its document-type hint to a vision model.
type ExtractInput struct {
	ImageBytes   []byte
	ContentType  string
	DocumentType domain.DocumentType
}

// ExtractOutput is the raw result of one vision call. RawText is free-form
// model output expected to embed a single JSON object; normalization is the
// caller's concern.
type ExtractOutput struct {
	RawText    string
	ModelUsed  string
	PromptUsed string
}

// DocumentExtractor abstracts a vision-capable extraction provider.
type DocumentExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}
