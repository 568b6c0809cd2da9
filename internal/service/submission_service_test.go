package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"publicpulse/internal/config"
	"publicpulse/internal/domain"
	"publicpulse/internal/port"
	"publicpulse/internal/service"
	"publicpulse/mocks"
)

type submissionFixture struct {
	repo       *mocks.MockSubmissionRepo
	userRepo   *mocks.MockUserRepo
	storage    *mocks.MockObjectStorage
	extraction *mocks.MockExtractionService
	email      *mocks.MockEmailSender
	svc        service.SubmissionService
}

func newSubmissionFixture() *submissionFixture {
	f := &submissionFixture{
		repo:       new(mocks.MockSubmissionRepo),
		userRepo:   new(mocks.MockUserRepo),
		storage:    new(mocks.MockObjectStorage),
		extraction: new(mocks.MockExtractionService),
		email:      new(mocks.MockEmailSender),
	}
	f.svc = service.NewSubmissionService(
		f.repo, f.userRepo, f.storage, f.extraction, f.email,
		config.S3Config{Bucket: "pulse-test", MaxFileSizeMB: 5, PresignExpiry: 900},
		zap.NewNop(),
	)
	return f
}

func extractedRecord(overall float64) *domain.ExtractedRecord {
	return &domain.ExtractedRecord{
		PersonalInfo: domain.PersonalInfo{FullName: "OKELLO JAMES"},
		Confidence:   domain.Confidence{Overall: overall},
	}
}

func TestSubmissionService_Create(t *testing.T) {
	f := newSubmissionFixture()
	applicantID := uuid.New()

	f.storage.On("Upload", mock.Anything, mock.Anything).
		Return(&port.UploadOutput{Location: "https://s3.example.com/obj"}, nil)
	f.extraction.On("ExtractFromImages", mock.Anything, mock.Anything, domain.DocTypeNationalID).
		Return(extractedRecord(88), nil).Once()
	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Submission")).
		Return(nil).Once()
	f.userRepo.On("GetByID", mock.Anything, applicantID).
		Return(&domain.User{ID: applicantID, Email: "amina@example.com", FullName: "Amina Nakato"}, nil).Once()
	f.email.On("SendSubmissionReceived", mock.Anything, "amina@example.com", "Amina Nakato", mock.Anything).
		Return(nil).Once()

	sub, err := f.svc.Create(context.Background(), &service.CreateSubmissionInput{
		ApplicantID:  applicantID,
		DocumentType: domain.DocTypeNationalID,
		Description:  "renewal",
		Images: []service.SubmissionImage{
			{FileName: "front.jpg", ContentType: "image/jpeg", Data: []byte("jpeg-bytes")},
			{FileName: "back.png", ContentType: "image/png", Data: []byte("png-bytes")},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.SubmissionExtracted, sub.Status)
	assert.Equal(t, domain.ImageKeyList{
		"submissions/" + sub.ID.String() + "/0.jpg",
		"submissions/" + sub.ID.String() + "/1.png",
	}, sub.ImageKeys)

	var rec domain.ExtractedRecord
	require.NoError(t, json.Unmarshal(sub.ExtractedRecord, &rec))
	assert.Equal(t, "OKELLO JAMES", rec.PersonalInfo.FullName)
	f.repo.AssertExpectations(t)
	f.email.AssertExpectations(t)
}

func TestSubmissionService_CreateLowConfidenceGoesToManualReview(t *testing.T) {
	f := newSubmissionFixture()
	applicantID := uuid.New()

	f.storage.On("Upload", mock.Anything, mock.Anything).
		Return(&port.UploadOutput{Location: "https://s3.example.com/obj"}, nil)
	f.extraction.On("ExtractFromImages", mock.Anything, mock.Anything, domain.DocTypeNationalID).
		Return(extractedRecord(32), nil).Once()
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	f.userRepo.On("GetByID", mock.Anything, applicantID).
		Return(&domain.User{ID: applicantID, Email: "amina@example.com"}, nil).Once()
	f.email.On("SendSubmissionReceived", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	sub, err := f.svc.Create(context.Background(), &service.CreateSubmissionInput{
		ApplicantID:  applicantID,
		DocumentType: domain.DocTypeNationalID,
		Images:       []service.SubmissionImage{{FileName: "a.jpg", ContentType: "image/jpeg", Data: []byte("x")}},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.SubmissionManualReview, sub.Status)
}

func TestSubmissionService_CreateExtractionErrorStillAccepted(t *testing.T) {
	f := newSubmissionFixture()
	applicantID := uuid.New()

	f.storage.On("Upload", mock.Anything, mock.Anything).
		Return(&port.UploadOutput{Location: "https://s3.example.com/obj"}, nil)
	f.extraction.On("ExtractFromImages", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.ErrNoDataExtracted).Once()
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	f.userRepo.On("GetByID", mock.Anything, applicantID).
		Return(&domain.User{ID: applicantID, Email: "amina@example.com"}, nil).Once()
	f.email.On("SendSubmissionReceived", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	sub, err := f.svc.Create(context.Background(), &service.CreateSubmissionInput{
		ApplicantID:  applicantID,
		DocumentType: domain.DocTypeNationalID,
		Images:       []service.SubmissionImage{{FileName: "a.jpg", ContentType: "image/jpeg", Data: []byte("x")}},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.SubmissionManualReview, sub.Status)
	assert.Nil(t, sub.ExtractedRecord)
}

func TestSubmissionService_CreateRejectsBadInput(t *testing.T) {
	f := newSubmissionFixture()

	_, err := f.svc.Create(context.Background(), &service.CreateSubmissionInput{
		ApplicantID:  uuid.New(),
		DocumentType: domain.DocTypeNationalID,
	})
	assert.ErrorIs(t, err, domain.ErrNoImages)

	_, err = f.svc.Create(context.Background(), &service.CreateSubmissionInput{
		ApplicantID:  uuid.New(),
		DocumentType: "fishing_license",
		Images:       []service.SubmissionImage{{FileName: "a.jpg", ContentType: "image/jpeg", Data: []byte("x")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDocumentType)

	_, err = f.svc.Create(context.Background(), &service.CreateSubmissionInput{
		ApplicantID:  uuid.New(),
		DocumentType: domain.DocTypeNationalID,
		Images:       []service.SubmissionImage{{FileName: "a.gif", ContentType: "image/gif", Data: []byte("x")}},
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedImageType)

	_, err = f.svc.Create(context.Background(), &service.CreateSubmissionInput{
		ApplicantID:  uuid.New(),
		DocumentType: domain.DocTypeNationalID,
		Images:       []service.SubmissionImage{{FileName: "a.jpg", ContentType: "image/jpeg", Data: make([]byte, 6*1024*1024)}},
	})
	assert.ErrorIs(t, err, domain.ErrImageTooLarge)

	f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestSubmissionService_GetByIDCitizenOwnershipCheck(t *testing.T) {
	f := newSubmissionFixture()
	owner := uuid.New()
	subID := uuid.New()
	f.repo.On("GetByID", mock.Anything, subID).
		Return(&domain.Submission{ID: subID, ApplicantID: owner}, nil)

	_, err := f.svc.GetByID(context.Background(), subID, uuid.New(), domain.RoleCitizen)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	sub, err := f.svc.GetByID(context.Background(), subID, owner, domain.RoleCitizen)
	require.NoError(t, err)
	assert.Equal(t, subID, sub.ID)

	// Officials can read any submission.
	_, err = f.svc.GetByID(context.Background(), subID, uuid.New(), domain.RoleOfficial)
	assert.NoError(t, err)
}

func TestSubmissionService_ListQueueRequiresOfficial(t *testing.T) {
	f := newSubmissionFixture()

	_, _, err := f.svc.ListQueue(context.Background(), domain.RoleCitizen, nil, 0, 20)
	assert.ErrorIs(t, err, domain.ErrInsufficientRole)

	f.repo.On("ListAll", mock.Anything, 0, 20).
		Return([]domain.Submission{{}}, 1, nil).Once()
	_, total, err := f.svc.ListQueue(context.Background(), domain.RoleOfficial, nil, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	status := domain.SubmissionManualReview
	f.repo.On("ListByStatus", mock.Anything, status, 0, 20).
		Return([]domain.Submission{}, 0, nil).Once()
	_, _, err = f.svc.ListQueue(context.Background(), domain.RoleAdmin, &status, 0, 20)
	assert.NoError(t, err)
}

func TestSubmissionService_Review(t *testing.T) {
	f := newSubmissionFixture()
	subID := uuid.New()
	reviewerID := uuid.New()
	f.repo.On("GetByID", mock.Anything, subID).
		Return(&domain.Submission{ID: subID, Status: domain.SubmissionExtracted}, nil).Once()
	f.repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Submission")).
		Return(nil).Once()

	sub, err := f.svc.Review(context.Background(), &service.ReviewInput{
		SubmissionID: subID,
		ReviewerID:   reviewerID,
		ReviewerRole: domain.RoleOfficial,
		Status:       domain.ReviewValid,
		Notes:        "document checks out",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.SubmissionValidated, sub.Status)
	assert.Equal(t, domain.ReviewValid, sub.ReviewStatus)
	require.NotNil(t, sub.ReviewedBy)
	assert.Equal(t, reviewerID, *sub.ReviewedBy)
	assert.NotNil(t, sub.ReviewedAt)
	assert.Equal(t, "document checks out", sub.ReviewerNotes)
}

func TestSubmissionService_ReviewInvalidMarksRejected(t *testing.T) {
	f := newSubmissionFixture()
	subID := uuid.New()
	f.repo.On("GetByID", mock.Anything, subID).
		Return(&domain.Submission{ID: subID, Status: domain.SubmissionManualReview}, nil).Once()
	f.repo.On("Update", mock.Anything, mock.Anything).Return(nil).Once()

	sub, err := f.svc.Review(context.Background(), &service.ReviewInput{
		SubmissionID: subID,
		ReviewerID:   uuid.New(),
		ReviewerRole: domain.RoleAdmin,
		Status:       domain.ReviewInvalid,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.SubmissionRejected, sub.Status)
}

func TestSubmissionService_ReviewGuards(t *testing.T) {
	f := newSubmissionFixture()

	_, err := f.svc.Review(context.Background(), &service.ReviewInput{
		ReviewerRole: domain.RoleCitizen,
		Status:       domain.ReviewValid,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientRole)

	_, err = f.svc.Review(context.Background(), &service.ReviewInput{
		ReviewerRole: domain.RoleOfficial,
		Status:       "maybe",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	subID := uuid.New()
	f.repo.On("GetByID", mock.Anything, subID).
		Return(&domain.Submission{ID: subID, Status: domain.SubmissionApproved}, nil).Once()
	_, err = f.svc.Review(context.Background(), &service.ReviewInput{
		SubmissionID: subID,
		ReviewerRole: domain.RoleOfficial,
		Status:       domain.ReviewValid,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestSubmissionService_Decide(t *testing.T) {
	f := newSubmissionFixture()
	subID := uuid.New()
	applicantID := uuid.New()
	deciderID := uuid.New()
	f.repo.On("GetByID", mock.Anything, subID).
		Return(&domain.Submission{ID: subID, ApplicantID: applicantID, Status: domain.SubmissionValidated}, nil).Once()
	f.repo.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	f.userRepo.On("GetByID", mock.Anything, applicantID).
		Return(&domain.User{ID: applicantID, Email: "amina@example.com", FullName: "Amina Nakato"}, nil).Once()
	f.email.On("SendDecisionNotice", mock.Anything, "amina@example.com", "Amina Nakato", subID.String(), "approved", "all good").
		Return(nil).Once()

	sub, err := f.svc.Decide(context.Background(), &service.DecisionInput{
		SubmissionID: subID,
		DeciderID:    deciderID,
		DeciderRole:  domain.RoleAdmin,
		Decision:     domain.DecisionApproved,
		Summary:      "all good",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.SubmissionApproved, sub.Status)
	require.NotNil(t, sub.DecidedBy)
	assert.Equal(t, deciderID, *sub.DecidedBy)
	f.email.AssertExpectations(t)
}

func TestSubmissionService_DecideGuards(t *testing.T) {
	f := newSubmissionFixture()

	_, err := f.svc.Decide(context.Background(), &service.DecisionInput{
		DeciderRole: domain.RoleOfficial,
		Decision:    domain.DecisionApproved,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientRole)

	subID := uuid.New()
	f.repo.On("GetByID", mock.Anything, subID).
		Return(&domain.Submission{ID: subID, Status: domain.SubmissionPending}, nil).Once()
	_, err = f.svc.Decide(context.Background(), &service.DecisionInput{
		SubmissionID: subID,
		DeciderRole:  domain.RoleAdmin,
		Decision:     domain.DecisionRejected,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestSubmissionService_ReExtract(t *testing.T) {
	f := newSubmissionFixture()
	subID := uuid.New()
	reviewedBy := uuid.New()
	f.repo.On("GetByID", mock.Anything, subID).
		Return(&domain.Submission{
			ID:           subID,
			Status:       domain.SubmissionRejected,
			ReviewStatus: domain.ReviewInvalid,
			ReviewedBy:   &reviewedBy,
			ImageKeys: domain.ImageKeyList{
				"submissions/" + subID.String() + "/0.jpg",
				"submissions/" + subID.String() + "/1.png",
				"submissions/" + subID.String() + "/legacy",
			},
		}, nil).Once()
	f.storage.On("Download", mock.Anything, "pulse-test", mock.Anything).
		Return([]byte("image-bytes"), nil).Times(3)
	f.extraction.On("ExtractFromImages", mock.Anything, mock.MatchedBy(func(assets []domain.ImageAsset) bool {
		// Content type is recovered from the key extension; keys without
		// one fall back to JPEG.
		return len(assets) == 3 &&
			assets[0].ContentType == "image/jpeg" &&
			assets[1].ContentType == "image/png" &&
			assets[2].ContentType == "image/jpeg"
	}), mock.Anything).
		Return(extractedRecord(91), nil).Once()
	f.repo.On("Update", mock.Anything, mock.Anything).Return(nil).Once()

	sub, err := f.svc.ReExtract(context.Background(), subID, uuid.New(), domain.RoleOfficial)

	require.NoError(t, err)
	assert.Equal(t, domain.SubmissionExtracted, sub.Status)
	assert.Equal(t, domain.ReviewPending, sub.ReviewStatus)
	assert.Nil(t, sub.ReviewedBy)
	f.extraction.AssertExpectations(t)
}

func TestSubmissionService_ReExtractGuards(t *testing.T) {
	f := newSubmissionFixture()

	_, err := f.svc.ReExtract(context.Background(), uuid.New(), uuid.New(), domain.RoleCitizen)
	assert.ErrorIs(t, err, domain.ErrInsufficientRole)

	subID := uuid.New()
	f.repo.On("GetByID", mock.Anything, subID).
		Return(&domain.Submission{ID: subID, Status: domain.SubmissionApproved}, nil).Once()
	_, err = f.svc.ReExtract(context.Background(), subID, uuid.New(), domain.RoleAdmin)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestSubmissionService_ImageURLs(t *testing.T) {
	f := newSubmissionFixture()
	subID := uuid.New()
	owner := uuid.New()
	f.repo.On("GetByID", mock.Anything, subID).
		Return(&domain.Submission{
			ID:          subID,
			ApplicantID: owner,
			ImageKeys:   domain.ImageKeyList{"submissions/x/0.jpg"},
		}, nil).Once()
	f.storage.On("GetPresignedURL", mock.Anything, "pulse-test", "submissions/x/0.jpg", int64(900)).
		Return("https://s3.example.com/signed", nil).Once()

	urls, err := f.svc.ImageURLs(context.Background(), subID, owner, domain.RoleCitizen)

	require.NoError(t, err)
	assert.Equal(t, []string{"https://s3.example.com/signed"}, urls)
}

func TestSubmissionService_UploadFailureAborts(t *testing.T) {
	f := newSubmissionFixture()
	f.storage.On("Upload", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused")).Once()

	_, err := f.svc.Create(context.Background(), &service.CreateSubmissionInput{
		ApplicantID:  uuid.New(),
		DocumentType: domain.DocTypeNationalID,
		Images:       []service.SubmissionImage{{FileName: "a.jpg", ContentType: "image/jpeg", Data: []byte("x")}},
	})

	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
