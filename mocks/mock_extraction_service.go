package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"publicpulse/internal/domain"
)

// MockExtractionService is a mock implementation of service.ExtractionService.
type MockExtractionService struct {
	mock.Mock
}

func (m *MockExtractionService) ExtractFromImages(ctx context.Context, images []domain.ImageAsset, docType domain.DocumentType) (*domain.ExtractedRecord, error) {
	args := m.Called(ctx, images, docType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractedRecord), args.Error(1)
}
