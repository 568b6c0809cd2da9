package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"publicpulse/internal/config"
	"publicpulse/internal/domain"
	"publicpulse/internal/extractor"
	"publicpulse/internal/imaging"
	"publicpulse/internal/port"
)

// ExtractionService runs the full image pipeline: merge, size optimization,
// sequential vision extraction, normalization and multi-result merging.
type ExtractionService interface {
	ExtractFromImages(ctx context.Context, images []domain.ImageAsset, docType domain.DocumentType) (*domain.ExtractedRecord, error)
}

type extractionService struct {
	extractor  port.DocumentExtractor
	codec      port.ImageCodec
	recognizer port.TextRecognizer // nil when OCR is disabled
	merger     *imaging.Merger
	optimizer  *imaging.Optimizer
	limiter    *rate.Limiter
	layout     imaging.MergeLayout
	target     imaging.OptimizationTarget
	mergePages bool
	strategy   extractor.MergeStrategy
	log        *zap.Logger
}

// NewExtractionService wires the pipeline from configuration. The rate
// limiter is shared across all submissions handled by this service, so
// provider calls stay sequential process-wide.
func NewExtractionService(
	docExtractor port.DocumentExtractor,
	codec port.ImageCodec,
	recognizer port.TextRecognizer,
	cfg *config.Config,
	log *zap.Logger,
) ExtractionService {
	p := cfg.Pipeline
	layout := imaging.DefaultMergeLayout()
	if p.MergeOrientation != "" {
		layout.Orientation = imaging.Orientation(p.MergeOrientation)
	}
	if p.MergeMaxWidth > 0 {
		layout.MaxWidth = p.MergeMaxWidth
	}
	if p.MergeMaxHeight > 0 {
		layout.MaxHeight = p.MergeMaxHeight
	}
	if p.MergeSpacing > 0 {
		layout.Spacing = p.MergeSpacing
	}
	if p.MergeQuality > 0 {
		layout.Quality = p.MergeQuality
	}

	target := imaging.DefaultOptimizationTarget()
	if p.MaxFileSizeMB > 0 {
		target.MaxFileSizeMB = p.MaxFileSizeMB
	}
	if p.MaxWidth > 0 {
		target.MaxWidth = p.MaxWidth
	}
	if p.MaxHeight > 0 {
		target.MaxHeight = p.MaxHeight
	}
	if p.InitialQuality > 0 {
		target.InitialQuality = p.InitialQuality
	}
	if p.MinQuality > 0 {
		target.MinQuality = p.MinQuality
	}

	rps := cfg.Extractor.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}

	return &extractionService{
		extractor:  docExtractor,
		codec:      codec,
		recognizer: recognizer,
		merger:     imaging.NewMerger(codec),
		optimizer:  imaging.NewOptimizer(codec),
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		layout:     layout,
		target:     target,
		mergePages: p.MergePages,
		strategy:   extractor.StrategyFirstMatch,
		log:        log,
	}
}

func (s *extractionService) ExtractFromImages(ctx context.Context, images []domain.ImageAsset, docType domain.DocumentType) (*domain.ExtractedRecord, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("service.ExtractFromImages: %w", domain.ErrNoImages)
	}

	prepared := s.prepare(images)

	attempts := make([]domain.ExtractionAttempt, 0, len(prepared))
	for i, img := range prepared {
		attempt, err := s.extractOne(ctx, img, docType)
		if err != nil {
			// Only context cancellation aborts the loop; provider errors
			// become failed attempts so the remaining images still run.
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("service.ExtractFromImages: %w", err)
			}
			s.log.Warn("extraction attempt failed",
				zap.Int("image_index", i),
				zap.Error(err))
			attempts = append(attempts, domain.ExtractionAttempt{Success: false, Error: err.Error()})
			continue
		}
		attempts = append(attempts, *attempt)
	}

	merged := extractor.MergeAttempts(attempts, s.strategy)
	if merged == nil {
		return nil, fmt.Errorf("service.ExtractFromImages: %w", domain.ErrNoDataExtracted)
	}

	s.supplementRawText(ctx, merged, prepared)
	return merged, nil
}

// prepare merges multi-page inputs into one image when enabled, then size
// optimizes whatever will be sent to the provider. Both steps degrade
// rather than fail: a merge error falls back to the originals and an
// optimization error passes the image through untouched.
func (s *extractionService) prepare(images []domain.ImageAsset) []domain.ImageAsset {
	working := images
	if s.mergePages && len(images) > 1 {
		payloads := make([][]byte, len(images))
		for i, img := range images {
			payloads[i] = img.Data
		}
		merged, err := s.merger.Merge(payloads, s.layout)
		if err != nil {
			s.log.Warn("image merge failed, extracting pages individually", zap.Error(err))
		} else {
			// Merge output is always JPEG regardless of the inputs.
			working = []domain.ImageAsset{{Data: merged, ContentType: "image/jpeg"}}
		}
	}

	payloads := make([][]byte, len(working))
	for i, img := range working {
		payloads[i] = img.Data
	}
	optimized := s.optimizer.OptimizeBatch(payloads, s.target, func(done, total int) {
		s.log.Debug("optimizing images", zap.Int("done", done), zap.Int("total", total))
	})

	out := make([]domain.ImageAsset, len(working))
	for i := range working {
		out[i] = domain.ImageAsset{Data: optimized[i], ContentType: working[i].ContentType}
		// Optimization re-encodes to the target format when it changed the
		// payload at all.
		if len(optimized[i]) != len(working[i].Data) {
			out[i].ContentType = "image/jpeg"
		}
	}
	return out
}

func (s *extractionService) extractOne(ctx context.Context, img domain.ImageAsset, docType domain.DocumentType) (*domain.ExtractionAttempt, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := s.extractor.Extract(ctx, port.ExtractInput{
		ImageBytes:   img.Data,
		ContentType:  img.ContentType,
		DocumentType: docType,
	})
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		return nil, err
	}

	record := extractor.NormalizeOrFallback(out.RawText, docType)
	record.ProcessingTimeMs = elapsed
	return &domain.ExtractionAttempt{
		Success:          true,
		Record:           record,
		ModelUsed:        out.ModelUsed,
		ProcessingTimeMs: elapsed,
	}, nil
}

// supplementRawText fills in raw document text from local OCR when the
// vision model returned none. Best effort: OCR failures only log.
func (s *extractionService) supplementRawText(ctx context.Context, rec *domain.ExtractedRecord, images []domain.ImageAsset) {
	if s.recognizer == nil || !domain.IsSentinel(rec.RawExtractedText) || len(images) == 0 {
		return
	}
	text, err := s.recognizer.RecognizeText(ctx, images[0].Data)
	if err != nil {
		s.log.Warn("ocr supplement failed", zap.Error(err))
		return
	}
	if text != "" {
		rec.RawExtractedText = text
	}
}
