package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"publicpulse/internal/config"
	"publicpulse/internal/domain"
	"publicpulse/internal/port"
)

// confidence below which a submission goes straight to the manual review
// queue instead of the extracted state.
const manualReviewThreshold = 50.0

// SubmissionImage is one uploaded image file in a submission request.
type SubmissionImage struct {
	FileName    string
	ContentType string
	Data        []byte
}

// CreateSubmissionInput is the DTO for creating a submission.
type CreateSubmissionInput struct {
	ApplicantID  uuid.UUID
	DocumentType domain.DocumentType
	Description  string
	Images       []SubmissionImage
}

// ReviewInput is the DTO for an official's review verdict.
type ReviewInput struct {
	SubmissionID uuid.UUID
	ReviewerID   uuid.UUID
	ReviewerRole domain.UserRole
	Status       domain.ReviewStatus
	Notes        string
}

// DecisionInput is the DTO for an admin's final decision.
type DecisionInput struct {
	SubmissionID uuid.UUID
	DeciderID    uuid.UUID
	DeciderRole  domain.UserRole
	Decision     domain.DecisionStatus
	Summary      string
}

// SubmissionService manages the citizen submission workflow from upload
// through extraction, review and final decision.
type SubmissionService interface {
	Create(ctx context.Context, input *CreateSubmissionInput) (*domain.Submission, error)
	GetByID(ctx context.Context, id, callerID uuid.UUID, role domain.UserRole) (*domain.Submission, error)
	ListMine(ctx context.Context, applicantID uuid.UUID, offset, limit int) ([]domain.Submission, int, error)
	ListQueue(ctx context.Context, role domain.UserRole, status *domain.SubmissionStatus, offset, limit int) ([]domain.Submission, int, error)
	Review(ctx context.Context, input *ReviewInput) (*domain.Submission, error)
	Decide(ctx context.Context, input *DecisionInput) (*domain.Submission, error)
	ReExtract(ctx context.Context, id, callerID uuid.UUID, role domain.UserRole) (*domain.Submission, error)
	ImageURLs(ctx context.Context, id, callerID uuid.UUID, role domain.UserRole) ([]string, error)
}

type submissionService struct {
	repo       port.SubmissionRepository
	userRepo   port.UserRepository
	storage    port.ObjectStorage
	extraction ExtractionService
	email      port.EmailSender
	s3cfg      config.S3Config
	log        *zap.Logger
}

// NewSubmissionService creates a new SubmissionService implementation.
func NewSubmissionService(
	repo port.SubmissionRepository,
	userRepo port.UserRepository,
	storage port.ObjectStorage,
	extraction ExtractionService,
	email port.EmailSender,
	s3cfg config.S3Config,
	log *zap.Logger,
) SubmissionService {
	return &submissionService{
		repo:       repo,
		userRepo:   userRepo,
		storage:    storage,
		extraction: extraction,
		email:      email,
		s3cfg:      s3cfg,
		log:        log,
	}
}

func (s *submissionService) Create(ctx context.Context, input *CreateSubmissionInput) (*domain.Submission, error) {
	if len(input.Images) == 0 {
		return nil, domain.ErrNoImages
	}
	if !domain.ValidDocumentTypes[input.DocumentType] {
		return nil, domain.ErrInvalidDocumentType
	}
	maxBytes := s.s3cfg.MaxFileSizeMB * 1024 * 1024
	assets := make([]domain.ImageAsset, 0, len(input.Images))
	for _, img := range input.Images {
		if _, ok := domain.AllowedContentTypes[img.ContentType]; !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedImageType, img.ContentType)
		}
		if maxBytes > 0 && int64(len(img.Data)) > maxBytes {
			return nil, fmt.Errorf("%w: %s", domain.ErrImageTooLarge, img.FileName)
		}
		assets = append(assets, domain.ImageAsset{Data: img.Data, ContentType: img.ContentType})
	}

	subID := uuid.New()
	keys, err := s.uploadImages(ctx, subID, input.Images)
	if err != nil {
		return nil, fmt.Errorf("submission.Create: %w", err)
	}

	now := time.Now()
	sub := &domain.Submission{
		ID:           subID,
		ApplicantID:  input.ApplicantID,
		DocumentType: input.DocumentType,
		Description:  input.Description,
		ImageKeys:    keys,
		Status:       domain.SubmissionPending,
		ReviewStatus: domain.ReviewPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.runExtraction(ctx, sub, assets)

	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("submission.Create: %w", err)
	}

	s.notifyReceived(ctx, sub)
	return sub, nil
}

// runExtraction executes the pipeline and folds the result into the
// submission. Extraction failure never blocks submission intake; the
// submission just lands in the manual review queue.
func (s *submissionService) runExtraction(ctx context.Context, sub *domain.Submission, assets []domain.ImageAsset) {
	record, err := s.extraction.ExtractFromImages(ctx, assets, sub.DocumentType)
	if err != nil {
		s.log.Warn("extraction failed for submission",
			zap.String("submission_id", sub.ID.String()),
			zap.Error(err))
		sub.Status = domain.SubmissionManualReview
		return
	}

	encoded, err := json.Marshal(record)
	if err != nil {
		s.log.Error("marshaling extracted record",
			zap.String("submission_id", sub.ID.String()),
			zap.Error(err))
		sub.Status = domain.SubmissionManualReview
		return
	}
	sub.ExtractedRecord = encoded

	if record.Confidence.Overall < manualReviewThreshold {
		sub.Status = domain.SubmissionManualReview
	} else {
		sub.Status = domain.SubmissionExtracted
	}
}

func (s *submissionService) uploadImages(ctx context.Context, subID uuid.UUID, images []SubmissionImage) (domain.ImageKeyList, error) {
	keys := make(domain.ImageKeyList, 0, len(images))
	for i, img := range images {
		// Content types were validated in Create, so the lookup always hits.
		ext := string(domain.AllowedContentTypes[img.ContentType])
		key := fmt.Sprintf("submissions/%s/%d.%s", subID, i, ext)
		_, err := s.storage.Upload(ctx, port.UploadInput{
			Bucket:      s.s3cfg.Bucket,
			Key:         key,
			Body:        bytes.NewReader(img.Data),
			ContentType: img.ContentType,
			Size:        int64(len(img.Data)),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (s *submissionService) GetByID(ctx context.Context, id, callerID uuid.UUID, role domain.UserRole) (*domain.Submission, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == domain.RoleCitizen && sub.ApplicantID != callerID {
		return nil, domain.ErrForbidden
	}
	return sub, nil
}

func (s *submissionService) ListMine(ctx context.Context, applicantID uuid.UUID, offset, limit int) ([]domain.Submission, int, error) {
	return s.repo.ListByApplicant(ctx, applicantID, offset, limit)
}

func (s *submissionService) ListQueue(ctx context.Context, role domain.UserRole, status *domain.SubmissionStatus, offset, limit int) ([]domain.Submission, int, error) {
	if role != domain.RoleOfficial && role != domain.RoleAdmin {
		return nil, 0, domain.ErrInsufficientRole
	}
	if status != nil {
		return s.repo.ListByStatus(ctx, *status, offset, limit)
	}
	return s.repo.ListAll(ctx, offset, limit)
}

func (s *submissionService) Review(ctx context.Context, input *ReviewInput) (*domain.Submission, error) {
	if input.ReviewerRole != domain.RoleOfficial && input.ReviewerRole != domain.RoleAdmin {
		return nil, domain.ErrInsufficientRole
	}
	if !domain.ValidReviewStatuses[input.Status] {
		return nil, domain.ErrInvalidStatus
	}

	sub, err := s.repo.GetByID(ctx, input.SubmissionID)
	if err != nil {
		return nil, err
	}
	switch sub.Status {
	case domain.SubmissionExtracted, domain.SubmissionManualReview:
	default:
		return nil, fmt.Errorf("%w: submission is %s", domain.ErrInvalidStatus, sub.Status)
	}

	now := time.Now()
	sub.ReviewStatus = input.Status
	sub.ReviewedBy = &input.ReviewerID
	sub.ReviewedAt = &now
	sub.ReviewerNotes = input.Notes
	switch input.Status {
	case domain.ReviewValid:
		sub.Status = domain.SubmissionValidated
	case domain.ReviewInvalid:
		sub.Status = domain.SubmissionRejected
	case domain.ReviewEscalate:
		sub.Status = domain.SubmissionManualReview
	}
	sub.UpdatedAt = now

	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("submission.Review: %w", err)
	}
	return sub, nil
}

func (s *submissionService) Decide(ctx context.Context, input *DecisionInput) (*domain.Submission, error) {
	if input.DeciderRole != domain.RoleAdmin {
		return nil, domain.ErrInsufficientRole
	}
	if !domain.ValidDecisionStatuses[input.Decision] {
		return nil, domain.ErrInvalidStatus
	}

	sub, err := s.repo.GetByID(ctx, input.SubmissionID)
	if err != nil {
		return nil, err
	}
	switch sub.Status {
	case domain.SubmissionValidated, domain.SubmissionRejected:
	default:
		return nil, fmt.Errorf("%w: submission is %s", domain.ErrInvalidStatus, sub.Status)
	}

	now := time.Now()
	sub.DecidedBy = &input.DeciderID
	sub.DecidedAt = &now
	sub.DecisionSummary = input.Summary
	if input.Decision == domain.DecisionApproved {
		sub.Status = domain.SubmissionApproved
	} else {
		sub.Status = domain.SubmissionRejected
	}
	sub.UpdatedAt = now

	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("submission.Decide: %w", err)
	}

	s.notifyDecision(ctx, sub, string(input.Decision))
	return sub, nil
}

// ReExtract re-runs the extraction pipeline against the stored images,
// replacing the submission's extracted record.
func (s *submissionService) ReExtract(ctx context.Context, id, callerID uuid.UUID, role domain.UserRole) (*domain.Submission, error) {
	if role != domain.RoleOfficial && role != domain.RoleAdmin {
		return nil, domain.ErrInsufficientRole
	}

	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch sub.Status {
	case domain.SubmissionApproved:
		return nil, fmt.Errorf("%w: submission is %s", domain.ErrInvalidStatus, sub.Status)
	}

	assets := make([]domain.ImageAsset, 0, len(sub.ImageKeys))
	for _, key := range sub.ImageKeys {
		data, err := s.storage.Download(ctx, s.s3cfg.Bucket, key)
		if err != nil {
			return nil, fmt.Errorf("submission.ReExtract: downloading %s: %w", key, err)
		}
		assets = append(assets, domain.ImageAsset{Data: data, ContentType: contentTypeForKey(key)})
	}

	s.runExtraction(ctx, sub, assets)
	sub.ReviewStatus = domain.ReviewPending
	sub.ReviewedBy = nil
	sub.ReviewedAt = nil
	sub.ReviewerNotes = ""
	sub.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("submission.ReExtract: %w", err)
	}
	return sub, nil
}

// contentTypeForKey recovers the MIME type of a stored image from its
// object key extension. Unknown extensions fall back to JPEG, matching the
// upload default.
func contentTypeForKey(key string) string {
	ext := strings.TrimPrefix(path.Ext(key), ".")
	if imgType, ok := domain.AllowedExtensions[ext]; ok {
		return domain.AllowedImageTypes[imgType]
	}
	return "image/jpeg"
}

func (s *submissionService) ImageURLs(ctx context.Context, id, callerID uuid.UUID, role domain.UserRole) ([]string, error) {
	sub, err := s.GetByID(ctx, id, callerID, role)
	if err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(sub.ImageKeys))
	for _, key := range sub.ImageKeys {
		url, err := s.storage.GetPresignedURL(ctx, s.s3cfg.Bucket, key, s.s3cfg.PresignExpiry)
		if err != nil {
			return nil, fmt.Errorf("submission.ImageURLs: %w", err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *submissionService) notifyReceived(ctx context.Context, sub *domain.Submission) {
	user, err := s.userRepo.GetByID(ctx, sub.ApplicantID)
	if err != nil {
		s.log.Warn("looking up applicant for notification", zap.Error(err))
		return
	}
	if err := s.email.SendSubmissionReceived(ctx, user.Email, user.FullName, sub.ID.String()); err != nil {
		s.log.Warn("sending submission notification",
			zap.String("submission_id", sub.ID.String()),
			zap.Error(err))
	}
}

func (s *submissionService) notifyDecision(ctx context.Context, sub *domain.Submission, decision string) {
	user, err := s.userRepo.GetByID(ctx, sub.ApplicantID)
	if err != nil {
		s.log.Warn("looking up applicant for notification", zap.Error(err))
		return
	}
	if err := s.email.SendDecisionNotice(ctx, user.Email, user.FullName, sub.ID.String(), decision, sub.DecisionSummary); err != nil {
		s.log.Warn("sending decision notification",
			zap.String("submission_id", sub.ID.String()),
			zap.Error(err))
	}
}
